package api

import (
	"encoding/json"
	"testing"
	"time"

	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceRouter(deps Deps) *gin.Engine {
	h := NewBalanceHandler(deps)
	r := newRouter(1)
	r.GET("/balance/:month", h.Get)
	r.POST("/balance/:month", h.Set)
	r.PUT("/balance/:month", h.Update)
	r.POST("/balance/:month/recalculate", h.Recalculate)
	return r
}

func TestBalanceHandler_GetMissingIsNull(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `monthly_balances` WHERE user_id = \\? AND month = \\?").
		WillReturnRows(sqlmock.NewRows(balanceColumns))

	w := doRequest(balanceRouter(deps), "GET", "/balance/2024-03", "")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestBalanceHandler_Get(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `monthly_balances`").
		WillReturnRows(sqlmock.NewRows(balanceColumns).
			AddRow(4, 1, "2024-03", "100000.00", "130000.00", "50000.00", "20000.00", time.Now()))

	w := doRequest(balanceRouter(deps), "GET", "/balance/2024-03", "")
	require.Equal(t, 200, w.Code)

	var b models.MonthlyBalance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, models.Month("2024-03"), b.Month)
	assert.True(t, decimal.NewFromInt(130000).Equal(b.CurrentBalance))
	assert.NotContains(t, w.Body.String(), "userId")
}

func TestBalanceHandler_GetBadMonth(t *testing.T) {
	deps, _ := setupMockDB(t)

	w := doRequest(balanceRouter(deps), "GET", "/balance/2024-13", "")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "invalid month format, expected YYYY-MM", decodeError(t, w).Error)
}

func TestBalanceHandler_Set(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `monthly_balances` .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	w := doRequest(balanceRouter(deps), "POST", "/balance/2024-03", `{"initialBalance":100000}`)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestBalanceHandler_SetRequiresInitialBalance(t *testing.T) {
	deps, _ := setupMockDB(t)

	w := doRequest(balanceRouter(deps), "POST", "/balance/2024-03", `{"totalIncome":5}`)

	assert.Equal(t, 400, w.Code)
}

func TestSetBalanceRequest_Values(t *testing.T) {
	initial := decimal.NewFromInt(100000)
	income := decimal.NewFromInt(50000)
	expense := decimal.NewFromInt(20000)

	v := SetBalanceRequest{InitialBalance: &initial, TotalIncome: &income, TotalExpense: &expense}.values()
	assert.True(t, decimal.NewFromInt(130000).Equal(v.CurrentBalance))

	v = SetBalanceRequest{InitialBalance: &initial}.values()
	assert.True(t, decimal.Zero.Equal(v.TotalIncome))
	assert.True(t, decimal.Zero.Equal(v.TotalExpense))
	assert.True(t, initial.Equal(v.CurrentBalance))

	current := decimal.NewFromInt(1)
	v = SetBalanceRequest{InitialBalance: &initial, CurrentBalance: &current}.values()
	assert.True(t, current.Equal(v.CurrentBalance))
}

func TestBalanceHandler_UpdateEmptyPatch(t *testing.T) {
	deps, _ := setupMockDB(t)

	w := doRequest(balanceRouter(deps), "PUT", "/balance/2024-03", `{}`)

	assert.Equal(t, 200, w.Code)
}

func TestBalanceHandler_Update(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `monthly_balances` SET .* WHERE user_id = \\? AND month = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doRequest(balanceRouter(deps), "PUT", "/balance/2024-03", `{"initialBalance":250000}`)

	assert.Equal(t, 200, w.Code)
}

func TestBalanceHandler_Recalculate(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `monthly_balances`").
		WillReturnRows(sqlmock.NewRows(balanceColumns).
			AddRow(4, 1, "2024-03", "100000.00", "100000.00", "0.00", "0.00", time.Now()))
	mock.ExpectQuery("SELECT \\* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(2, 1, "food", "20000.00", "expense", "", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Now()).
			AddRow(1, 1, "salary", "50000.00", "income", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `monthly_balances` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doRequest(balanceRouter(deps), "POST", "/balance/2024-03/recalculate", "")
	require.Equal(t, 200, w.Code)

	var b models.MonthlyBalance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.True(t, decimal.NewFromInt(130000).Equal(b.CurrentBalance))
	assert.True(t, decimal.NewFromInt(50000).Equal(b.TotalIncome))
	assert.True(t, decimal.NewFromInt(20000).Equal(b.TotalExpense))
}

func TestBalanceHandler_RecalculateWithoutBalance(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `monthly_balances`").
		WillReturnRows(sqlmock.NewRows(balanceColumns))

	w := doRequest(balanceRouter(deps), "POST", "/balance/2024-03/recalculate", "")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "null", w.Body.String())
}
