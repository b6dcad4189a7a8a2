// Package service holds the business logic that sits between handlers and
// repositories: balance recalculation and outgoing mail.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budget/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is the income and expense sum of a set of transactions.
type Totals struct {
	Income  decimal.Decimal `json:"totalIncome"`
	Expense decimal.Decimal `json:"totalExpense"`
}

// CurrentBalance is initial + income - expense.
func (t Totals) CurrentBalance(initial decimal.Decimal) decimal.Decimal {
	return initial.Add(t.Income).Sub(t.Expense)
}

// Summarize sums txs by kind.
func Summarize(txs []models.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case models.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case models.KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

// CategoryTotal is the amount spent or earned under one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Type     models.Kind     `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// ByCategory groups txs per (type, category), largest amount first.
func ByCategory(txs []models.Transaction) []CategoryTotal {
	type key struct {
		kind     models.Kind
		category string
	}
	idx := make(map[key]int)
	var out []CategoryTotal
	for _, tx := range txs {
		k := key{tx.Type, tx.Category}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, CategoryTotal{Category: tx.Category, Type: tx.Type, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].Amount.Cmp(out[b].Amount); c != 0 {
			return c > 0
		}
		return out[a].Category < out[b].Category
	})
	return out
}

// Recalculate recomputes the derived figures of month from its transactions and
// writes them back. It returns nil without writing when no balance has been set.
//
// Nothing serialises concurrent runs for the same month; the last write wins.
func Recalculate(ctx context.Context, ledger Ledger, month models.Month) (*models.MonthlyBalance, error) {
	balance, err := ledger.Balance(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("load balance %s: %w", month, err)
	}
	if balance == nil {
		return nil, nil
	}

	txs, err := ledger.Transactions(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("load transactions %s: %w", month, err)
	}

	totals := Summarize(txs)
	current := totals.CurrentBalance(balance.InitialBalance)
	patch := models.BalancePatch{}.WithTotals(totals.Income, totals.Expense).WithCurrentBalance(current)
	if err := ledger.PatchBalance(ctx, month, patch); err != nil {
		return nil, fmt.Errorf("save balance %s: %w", month, err)
	}

	updated := *balance
	updated.TotalIncome = totals.Income
	updated.TotalExpense = totals.Expense
	updated.CurrentBalance = current
	updated.LastUpdated = time.Now()
	return &updated, nil
}

// RecalculateStored runs Recalculate against the database for one owner,
// holding a single pooled connection for the read-then-write.
func RecalculateStored(ctx context.Context, db *gorm.DB, owner uint, month models.Month) (*models.MonthlyBalance, error) {
	var out *models.MonthlyBalance
	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var err error
		out, err = Recalculate(ctx, NewStoreLedger(conn, owner), month)
		return err
	})
	return out, err
}
