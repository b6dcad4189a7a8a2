package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportRouter(deps Deps) *gin.Engine {
	h := NewExportHandler(deps)
	r := newRouter(1)
	r.GET("/export/csv", h.ExportCSV)
	r.GET("/export/xlsx", h.ExportXLSX)
	r.GET("/export/json", h.ExportJSON)
	return r
}

func expectMarchTransactions(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT \\* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(7, 1, "food", "20000.00", "expense", "lunch, with \"friends\"", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Now()).
			AddRow(6, 1, "salary", "50000.00", "income", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Now()))
}

func TestExportHandler_ExportCSV(t *testing.T) {
	deps, mock := setupMockDB(t)
	expectMarchTransactions(mock)

	w := doRequest(exportRouter(deps), "GET", "/export/csv?month=2024-03", "")

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=transactions_2024-03.csv", w.Header().Get("Content-Disposition"))

	body := strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Date,Type,Category,Amount,Description", lines[0])
	assert.Equal(t, `7,2024-03-15,expense,food,20000.00,"lunch, with ""friends"""`, lines[1])
	assert.Equal(t, "6,2024-03-01,income,salary,50000.00,", lines[2])
}

func TestExportHandler_ExportCSVBadMonth(t *testing.T) {
	deps, _ := setupMockDB(t)

	w := doRequest(exportRouter(deps), "GET", "/export/csv?month=03-2024", "")

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportXLSX(t *testing.T) {
	deps, mock := setupMockDB(t)
	expectMarchTransactions(mock)

	w := doRequest(exportRouter(deps), "GET", "/export/xlsx?month=2024-03", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("2024-03", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)
	category, err := f.GetCellValue("2024-03", "D2")
	require.NoError(t, err)
	assert.Equal(t, "food", category)
	label, err := f.GetCellValue("2024-03", "D5")
	require.NoError(t, err)
	assert.Equal(t, "Income", label)
}

func TestExportHandler_ExportJSON(t *testing.T) {
	deps, mock := setupMockDB(t)
	expectMarchTransactions(mock)

	w := doRequest(exportRouter(deps), "GET", "/export/json?month=2024-03", "")
	require.Equal(t, 200, w.Code)

	var resp ExportSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.Month("2024-03"), resp.Month)
	assert.Equal(t, 2, resp.Count)
	assert.True(t, decimal.NewFromInt(50000).Equal(resp.Totals.Income))
	assert.True(t, decimal.NewFromInt(20000).Equal(resp.Totals.Expense))
}
