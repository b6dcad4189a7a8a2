package service

import (
	"context"

	"budget/models"
	"budget/repository"

	"gorm.io/gorm"
)

// Ledger is the view of one owner's books that recalculation needs. The server
// backs it with repositories; the HTTP client backs it with API calls.
type Ledger interface {
	Balance(ctx context.Context, month models.Month) (*models.MonthlyBalance, error)
	Transactions(ctx context.Context, month models.Month) ([]models.Transaction, error)
	PatchBalance(ctx context.Context, month models.Month, patch models.BalancePatch) error
}

// StoreLedger binds the repositories to one owner.
type StoreLedger struct {
	owner        uint
	balances     *repository.BalanceRepository
	transactions *repository.TransactionRepository
}

func NewStoreLedger(db *gorm.DB, owner uint) *StoreLedger {
	return &StoreLedger{
		owner:        owner,
		balances:     repository.NewBalanceRepository(db),
		transactions: repository.NewTransactionRepository(db),
	}
}

func (l *StoreLedger) Balance(ctx context.Context, month models.Month) (*models.MonthlyBalance, error) {
	return l.balances.Get(ctx, l.owner, month)
}

func (l *StoreLedger) Transactions(ctx context.Context, month models.Month) ([]models.Transaction, error) {
	return l.transactions.List(ctx, l.owner, month)
}

func (l *StoreLedger) PatchBalance(ctx context.Context, month models.Month, patch models.BalancePatch) error {
	return l.balances.Update(ctx, l.owner, month, patch)
}
