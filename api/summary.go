package api

import (
	"log/slog"
	"net/http"

	"budget/middleware"
	"budget/models"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// SummaryResponse is the income/expense overview of a month, or of all time
// when no month is given.
type SummaryResponse struct {
	Month      models.Month            `json:"month,omitempty" example:"2024-03"`
	Totals     service.Totals          `json:"totals"`
	Net        string                  `json:"net" example:"30000.00"`
	Categories []service.CategoryTotal `json:"categories"`
}

type SummaryHandler struct {
	transactions *repository.TransactionRepository
	logger       *slog.Logger
}

func NewSummaryHandler(deps Deps) *SummaryHandler {
	return &SummaryHandler{
		transactions: repository.NewTransactionRepository(deps.DB),
		logger:       deps.getLogger(),
	}
}

// Summary totals income and expense
// @Summary Income/expense summary
// @Description Totals per type and per category. Without month the whole history is summed.
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /statistics/summary [get]
func (h *SummaryHandler) Summary(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	sums, err := h.transactions.SumByKind(ctx, owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to compute summary")
		return
	}
	txs, err := h.transactions.List(ctx, owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to compute summary")
		return
	}

	cats := service.ByCategory(txs)
	if cats == nil {
		cats = []service.CategoryTotal{}
	}
	totals := service.Totals{Income: sums[models.KindIncome], Expense: sums[models.KindExpense]}
	c.JSON(http.StatusOK, SummaryResponse{
		Month:      month,
		Totals:     totals,
		Net:        totals.Income.Sub(totals.Expense).StringFixed(2),
		Categories: cats,
	})
}
