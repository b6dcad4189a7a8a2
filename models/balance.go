package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBalance holds one owner's books for one month. CurrentBalance is derived:
// initial + income - expense, recomputed on demand and never enforced by the store.
type MonthlyBalance struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"-" gorm:"not null;uniqueIndex:idx_balance_user_month"`
	Month          Month           `json:"month" gorm:"size:7;not null;uniqueIndex:idx_balance_user_month"`
	InitialBalance decimal.Decimal `json:"initialBalance" gorm:"type:decimal(14,2);not null"`
	CurrentBalance decimal.Decimal `json:"currentBalance" gorm:"type:decimal(14,2);not null"`
	TotalIncome    decimal.Decimal `json:"totalIncome" gorm:"type:decimal(14,2);not null"`
	TotalExpense   decimal.Decimal `json:"totalExpense" gorm:"type:decimal(14,2);not null"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

func (MonthlyBalance) TableName() string {
	return "monthly_balances"
}

// BalanceValues are the four numeric fields written by an upsert.
type BalanceValues struct {
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
}
