package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind tells income from expense. Amounts are never negative; the sign lives here.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"userId" gorm:"index;not null"`
	Category    string          `json:"category" gorm:"size:100;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type        Kind            `json:"type" gorm:"size:20;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Date        Date            `json:"date" gorm:"type:date;not null"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TableName sets the table name.
func (Transaction) TableName() string {
	return "transactions"
}
