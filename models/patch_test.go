package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionPatch_Columns(t *testing.T) {
	assert.True(t, TransactionPatch{}.Empty())
	assert.Empty(t, TransactionPatch{}.Columns())

	p := TransactionPatch{}.
		WithAmount(decimal.NewFromInt(2500)).
		WithDate(NewDate(2024, time.March, 2))
	cols := p.Columns()
	assert.Len(t, cols, 2)
	assert.True(t, decimal.NewFromInt(2500).Equal(cols["amount"].(decimal.Decimal)))
	assert.Equal(t, NewDate(2024, time.March, 2), cols["date"])
	assert.NotContains(t, cols, "description")
}

func TestTransactionPatch_Validate(t *testing.T) {
	assert.NoError(t, TransactionPatch{}.WithType(KindIncome).Validate())
	assert.Error(t, TransactionPatch{}.WithType("refund").Validate())
	assert.Error(t, TransactionPatch{}.WithAmount(decimal.NewFromInt(-1)).Validate())
	assert.Error(t, TransactionPatch{}.WithCategory("  ").Validate())
	assert.Error(t, TransactionPatch{}.WithDate(Date{}).Validate())
}

func TestBalancePatch_Columns(t *testing.T) {
	assert.True(t, BalancePatch{}.Empty())

	p := BalancePatch{}.WithTotals(decimal.NewFromInt(10), decimal.NewFromInt(4))
	assert.False(t, p.Empty())
	assert.ElementsMatch(t, []string{"total_income", "total_expense"}, keys(p.Columns()))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
