package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"budget/middleware"
	"budget/models"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{"ID", "Date", "Type", "Category", "Amount", "Description"}

// ExportHandler serves /export.
type ExportHandler struct {
	transactions *repository.TransactionRepository
	logger       *slog.Logger
}

func NewExportHandler(deps Deps) *ExportHandler {
	return &ExportHandler{
		transactions: repository.NewTransactionRepository(deps.DB),
		logger:       deps.getLogger(),
	}
}

// ExportSummary is the JSON export of a month.
type ExportSummary struct {
	Month        models.Month         `json:"month"`
	Totals       service.Totals       `json:"totals"`
	Count        int                  `json:"count"`
	Transactions []models.Transaction `json:"transactions"`
}

// load reads the month named by ?month=, defaulting to the current month.
func (h *ExportHandler) load(c *gin.Context) (models.Month, []models.Transaction, bool) {
	month, ok := monthQuery(c)
	if !ok {
		return "", nil, false
	}
	if month == "" {
		month = models.CurrentMonth()
	}
	txs, err := h.transactions.List(c.Request.Context(), middleware.GetCurrentUserID(c), month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load transactions")
		return "", nil, false
	}
	return month, txs, true
}

func exportRow(tx models.Transaction) []string {
	return []string{
		strconv.FormatUint(uint64(tx.ID), 10),
		tx.Date.String(),
		string(tx.Type),
		tx.Category,
		tx.Amount.StringFixed(2),
		tx.Description,
	}
}

// ExportCSV downloads a month as CSV
// @Summary Export CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	month, txs, ok := h.load(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// BOM so spreadsheet apps detect UTF-8
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		RespondError(c, h.logger, err, "failed to generate CSV")
		return
	}
	for _, tx := range txs {
		if err := writer.Write(exportRow(tx)); err != nil {
			RespondError(c, h.logger, err, "failed to generate CSV")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		RespondError(c, h.logger, err, "failed to generate CSV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.csv", month))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX downloads a month as an Excel workbook
// @Summary Export XLSX
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	month, txs, ok := h.load(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(month, txs)
	if err != nil {
		RespondError(c, h.logger, err, "failed to generate workbook")
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		RespondError(c, h.logger, err, "failed to generate workbook")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.xlsx", month))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportJSON returns a month with its totals
// @Summary Export JSON
// @Tags export
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Success 200 {object} ExportSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	month, txs, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ExportSummary{
		Month:        month,
		Totals:       service.Summarize(txs),
		Count:        len(txs),
		Transactions: txs,
	})
}

func buildWorkbook(month models.Month, txs []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := month.String()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: border})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})

	widths := map[string]float64{"A": 8, "B": 12, "C": 10, "D": 18, "E": 14, "F": 40}
	for col, w := range widths {
		_ = f.SetColWidth(sheet, col, col, w)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	_ = f.SetCellStyle(sheet, "A1", "F1", headerStyle)

	for i, tx := range txs {
		row := i + 2
		values := []interface{}{tx.ID, tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.InexactFloat64(), tx.Description}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
	}

	totals := service.Summarize(txs)
	row := len(txs) + 3
	for i, line := range []struct {
		label string
		value float64
	}{
		{"Income", totals.Income.InexactFloat64()},
		{"Expense", totals.Expense.InexactFloat64()},
	} {
		r := row + i
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), line.label)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", r), line.value)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("D%d", r), fmt.Sprintf("E%d", r), totalStyle)
	}
	return f, nil
}
