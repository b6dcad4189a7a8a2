package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionPatch carries the fields of a partial transaction update. Nil fields are
// left untouched; Columns emits SET entries only for the fields that are present.
type TransactionPatch struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *Kind            `json:"type,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Date        *Date            `json:"date,omitempty"`
}

func (p TransactionPatch) WithAmount(amount decimal.Decimal) TransactionPatch {
	p.Amount = &amount
	return p
}

func (p TransactionPatch) WithType(kind Kind) TransactionPatch {
	p.Type = &kind
	return p
}

func (p TransactionPatch) WithDescription(description string) TransactionPatch {
	p.Description = &description
	return p
}

func (p TransactionPatch) WithCategory(category string) TransactionPatch {
	p.Category = &category
	return p
}

func (p TransactionPatch) WithDate(date Date) TransactionPatch {
	p.Date = &date
	return p
}

// Empty reports whether no field is set.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Type == nil && p.Description == nil && p.Category == nil && p.Date == nil
}

// Validate checks the fields that are present.
func (p TransactionPatch) Validate() error {
	if p.Amount != nil && p.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if p.Type != nil && !p.Type.Valid() {
		return errors.New("type must be income or expense")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return errors.New("category must not be empty")
	}
	if p.Date != nil && p.Date.IsZero() {
		return errors.New("date must not be empty")
	}
	return nil
}

// Columns maps present fields to their column names.
func (p TransactionPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Category != nil {
		cols["category"] = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	return cols
}

// BalancePatch is the merge-patch body for a monthly balance.
type BalancePatch struct {
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty"`
	TotalIncome    *decimal.Decimal `json:"totalIncome,omitempty"`
	TotalExpense   *decimal.Decimal `json:"totalExpense,omitempty"`
}

func (p BalancePatch) WithInitialBalance(v decimal.Decimal) BalancePatch {
	p.InitialBalance = &v
	return p
}

func (p BalancePatch) WithCurrentBalance(v decimal.Decimal) BalancePatch {
	p.CurrentBalance = &v
	return p
}

func (p BalancePatch) WithTotals(income, expense decimal.Decimal) BalancePatch {
	p.TotalIncome = &income
	p.TotalExpense = &expense
	return p
}

// Empty reports whether no field is set.
func (p BalancePatch) Empty() bool {
	return p.InitialBalance == nil && p.CurrentBalance == nil && p.TotalIncome == nil && p.TotalExpense == nil
}

// Columns maps present fields to their column names.
func (p BalancePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.InitialBalance != nil {
		cols["initial_balance"] = *p.InitialBalance
	}
	if p.CurrentBalance != nil {
		cols["current_balance"] = *p.CurrentBalance
	}
	if p.TotalIncome != nil {
		cols["total_income"] = *p.TotalIncome
	}
	if p.TotalExpense != nil {
		cols["total_expense"] = *p.TotalExpense
	}
	return cols
}
