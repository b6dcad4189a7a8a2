package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db, now: time.Now}
}

// Get returns the balance for month, or nil if none was set.
func (r *BalanceRepository) Get(ctx context.Context, owner uint, month models.Month) (*models.MonthlyBalance, error) {
	var b models.MonthlyBalance
	err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", owner, month).Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Set creates the month or overwrites all four figures if it exists.
func (r *BalanceRepository) Set(ctx context.Context, owner uint, month models.Month, v models.BalanceValues) error {
	b := models.MonthlyBalance{
		UserID:         owner,
		Month:          month,
		InitialBalance: v.InitialBalance,
		CurrentBalance: v.CurrentBalance,
		TotalIncome:    v.TotalIncome,
		TotalExpense:   v.TotalExpense,
		LastUpdated:    r.now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"initial_balance", "current_balance", "total_income", "total_expense", "last_updated",
		}),
	}).Create(&b).Error
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// Update merges patch into the month. Empty patches and missing months are no-ops.
func (r *BalanceRepository) Update(ctx context.Context, owner uint, month models.Month, patch models.BalancePatch) error {
	if patch.Empty() {
		return nil
	}
	cols := patch.Columns()
	cols["last_updated"] = r.now()
	err := r.db.WithContext(ctx).Model(&models.MonthlyBalance{}).
		Where("user_id = ? AND month = ?", owner, month).
		Updates(cols).Error
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
