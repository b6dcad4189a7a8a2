// Package repository holds the gorm-backed stores. Every method is scoped to an
// owner; rows belonging to other users are invisible to it.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budget/apperror"
	"budget/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errTransactionNotFound = apperror.NotFound("transaction not found")

// NewTransaction is the input to TransactionRepository.Add.
type NewTransaction struct {
	Type        models.Kind
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        models.Date
}

// Validate checks required fields.
func (t NewTransaction) Validate() error {
	if !t.Type.Valid() {
		return apperror.Invalid("type must be income or expense")
	}
	if t.Amount.IsNegative() {
		return apperror.Invalid("amount must not be negative")
	}
	if strings.TrimSpace(t.Category) == "" {
		return apperror.Invalid("category is required")
	}
	if t.Date.IsZero() {
		return apperror.Invalid("date is required")
	}
	return nil
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Add stores a transaction and returns its id.
func (r *TransactionRepository) Add(ctx context.Context, owner uint, in NewTransaction) (uint, error) {
	if owner == 0 {
		return 0, apperror.Unauthorized("not authenticated")
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}
	tx := models.Transaction{
		UserID:      owner,
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Date:        models.DateOf(in.Date.Time),
	}
	if err := r.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return tx.ID, nil
}

// List returns the owner's transactions, newest first. A zero month lists everything.
func (r *TransactionRepository) List(ctx context.Context, owner uint, month models.Month) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", owner)
	if month != "" {
		q = q.Where("date >= ? AND date < ?", month.Start(), month.End())
	}
	txs := make([]models.Transaction, 0)
	if err := q.Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Get loads one transaction.
func (r *TransactionRepository) Get(ctx context.Context, owner, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Take(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

// Update writes the fields present in patch.
func (r *TransactionRepository) Update(ctx context.Context, owner, id uint, patch models.TransactionPatch) error {
	if err := patch.Validate(); err != nil {
		return apperror.Invalid(err.Error())
	}
	if patch.Empty() {
		_, err := r.Get(ctx, owner, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, owner).
		Updates(patch.Columns())
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errTransactionNotFound
	}
	return nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, owner, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errTransactionNotFound
	}
	return nil
}

// CountByCategory counts the owner's transactions filed under category.
func (r *TransactionRepository) CountByCategory(ctx context.Context, owner uint, category string) (int64, error) {
	return countByCategory(r.db.WithContext(ctx), owner, category)
}

func countByCategory(db *gorm.DB, owner uint, category string) (int64, error) {
	var n int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND category = ?", owner, category).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

type kindTotal struct {
	Type  models.Kind
	Total decimal.Decimal
}

// SumByKind totals amounts per transaction type. Both kinds are always present in
// the result. A zero month sums everything.
func (r *TransactionRepository) SumByKind(ctx context.Context, owner uint, month models.Month) (map[models.Kind]decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", owner)
	if month != "" {
		q = q.Where("date >= ? AND date < ?", month.Start(), month.End())
	}

	var rows []kindTotal
	if err := q.Select("type, COALESCE(SUM(amount), 0) AS total").Group("type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	sums := map[models.Kind]decimal.Decimal{
		models.KindIncome:  decimal.Zero,
		models.KindExpense: decimal.Zero,
	}
	for _, row := range rows {
		if row.Type.Valid() {
			sums[row.Type] = row.Total
		}
	}
	return sums, nil
}
