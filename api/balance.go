package api

import (
	"log/slog"
	"net/http"

	"budget/events"
	"budget/middleware"
	"budget/models"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceHandler serves /balance/{month}.
type BalanceHandler struct {
	db       *gorm.DB
	balances *repository.BalanceRepository
	events   events.Publisher
	logger   *slog.Logger
}

func NewBalanceHandler(deps Deps) *BalanceHandler {
	return &BalanceHandler{
		db:       deps.DB,
		balances: repository.NewBalanceRepository(deps.DB),
		events:   deps.getPublisher(),
		logger:   deps.getLogger(),
	}
}

// SetBalanceRequest is the body of POST /balance/{month}. Totals default to zero;
// a missing current balance is derived from the other three.
type SetBalanceRequest struct {
	InitialBalance *decimal.Decimal `json:"initialBalance" binding:"required" swaggertype:"number" example:"100000"`
	CurrentBalance *decimal.Decimal `json:"currentBalance" swaggertype:"number"`
	TotalIncome    *decimal.Decimal `json:"totalIncome" swaggertype:"number"`
	TotalExpense   *decimal.Decimal `json:"totalExpense" swaggertype:"number"`
}

func (r SetBalanceRequest) values() models.BalanceValues {
	v := models.BalanceValues{
		InitialBalance: *r.InitialBalance,
		TotalIncome:    decimal.Zero,
		TotalExpense:   decimal.Zero,
	}
	if r.TotalIncome != nil {
		v.TotalIncome = *r.TotalIncome
	}
	if r.TotalExpense != nil {
		v.TotalExpense = *r.TotalExpense
	}
	if r.CurrentBalance != nil {
		v.CurrentBalance = *r.CurrentBalance
	} else {
		v.CurrentBalance = service.Totals{Income: v.TotalIncome, Expense: v.TotalExpense}.CurrentBalance(v.InitialBalance)
	}
	return v
}

// Get returns one month's balance
// @Summary Get monthly balance
// @Description Returns null when no balance has been set for the month
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Success 200 {object} models.MonthlyBalance
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /balance/{month} [get]
func (h *BalanceHandler) Get(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthParam(c)
	if !ok {
		return
	}

	b, err := h.balances.Get(c.Request.Context(), owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load balance")
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Set creates or overwrites a month's balance
// @Summary Set monthly balance
// @Tags balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Param request body SetBalanceRequest true "Balance"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /balance/{month} [post]
func (h *BalanceHandler) Set(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthParam(c)
	if !ok {
		return
	}

	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	if err := h.balances.Set(c.Request.Context(), owner, month, req.values()); err != nil {
		RespondError(c, h.logger, err, "failed to save balance")
		return
	}
	events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.BalanceSet, owner, month, ""))
	OK(c)
}

// Update merges the given fields into a month's balance
// @Summary Update monthly balance
// @Description Only the fields present are written; a month without a balance is left alone
// @Tags balance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Param request body models.BalancePatch true "Fields to change"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /balance/{month} [put]
func (h *BalanceHandler) Update(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthParam(c)
	if !ok {
		return
	}

	var patch models.BalancePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	if err := h.balances.Update(c.Request.Context(), owner, month, patch); err != nil {
		RespondError(c, h.logger, err, "failed to update balance")
		return
	}
	if !patch.Empty() {
		events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.BalanceUpdated, owner, month, ""))
	}
	OK(c)
}

// Recalculate recomputes a month's totals from its transactions
// @Summary Recalculate monthly balance
// @Description Returns the refreshed balance, or null when the month has none
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Success 200 {object} models.MonthlyBalance
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /balance/{month}/recalculate [post]
func (h *BalanceHandler) Recalculate(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthParam(c)
	if !ok {
		return
	}

	b, err := service.RecalculateStored(c.Request.Context(), h.db, owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to recalculate balance")
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	events.Emit(c.Request.Context(), h.events, h.logger, events.New(events.BalanceRecomputed, owner, month, ""))
	c.JSON(http.StatusOK, b)
}
