package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"budget/events"
	"budget/logger"
	"budget/middleware"
	"budget/models"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgTransactionNotFound = "transaction not found"

// TransactionHandler serves /transactions.
type TransactionHandler struct {
	db              *gorm.DB
	transactions    *repository.TransactionRepository
	categories      *repository.CategoryRepository
	events          events.Publisher
	logger          *slog.Logger
	autoRecalculate bool
}

func NewTransactionHandler(deps Deps) *TransactionHandler {
	return &TransactionHandler{
		db:              deps.DB,
		transactions:    repository.NewTransactionRepository(deps.DB),
		categories:      repository.NewCategoryRepository(deps.DB),
		events:          deps.getPublisher(),
		logger:          deps.getLogger(),
		autoRecalculate: deps.AutoRecalculate,
	}
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required" swaggertype:"number" example:"50000"`
	Type        string           `json:"type" binding:"required,oneof=income expense" example:"income"`
	Description string           `json:"description" example:"March salary"`
	Category    string           `json:"category" binding:"required" example:"salary"`
	Date        string           `json:"date" binding:"required" example:"2024-03-01"`
}

// List returns the caller's transactions
// @Summary List transactions
// @Description Transactions of the current user, newest first, optionally limited to one month
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthQuery(c)
	if !ok {
		return
	}

	txs, err := h.transactions.List(c.Request.Context(), owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load transactions")
		return
	}
	c.JSON(http.StatusOK, txs)
}

// Create records a transaction
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} IDResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}
	if req.Amount.IsNegative() {
		BadRequest(c, "amount must not be negative")
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}
	category := strings.TrimSpace(req.Category)
	if !h.categoryKnown(c, owner, category) {
		return
	}

	id, err := h.transactions.Add(c.Request.Context(), owner, repository.NewTransaction{
		Type:        models.Kind(req.Type),
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		RespondError(c, h.logger, err, "failed to create transaction")
		return
	}

	h.afterWrite(c.Request.Context(), owner, events.TransactionCreated, id, date.MonthKey())
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// Update changes some fields of a transaction
// @Summary Update transaction
// @Description Only the fields present in the body are written
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body models.TransactionPatch true "Fields to change"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	id, ok := idParam(c, msgTransactionNotFound)
	if !ok {
		return
	}

	var patch models.TransactionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}
	if err := patch.Validate(); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if patch.Category != nil && !h.categoryKnown(c, owner, strings.TrimSpace(*patch.Category)) {
		return
	}

	ctx := c.Request.Context()
	var before *models.Transaction
	if h.autoRecalculate {
		var err error
		if before, err = h.transactions.Get(ctx, owner, id); err != nil {
			RespondError(c, h.logger, err, "failed to update transaction")
			return
		}
	}

	if err := h.transactions.Update(ctx, owner, id, patch); err != nil {
		RespondError(c, h.logger, err, "failed to update transaction")
		return
	}

	var months []models.Month
	if before != nil {
		months = append(months, before.Date.MonthKey())
	}
	if patch.Date != nil {
		months = append(months, patch.Date.MonthKey())
	}
	h.afterWrite(ctx, owner, events.TransactionUpdated, id, months...)
	OK(c)
}

// Delete removes a transaction
// @Summary Delete transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	id, ok := idParam(c, msgTransactionNotFound)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var month models.Month
	if h.autoRecalculate {
		tx, err := h.transactions.Get(ctx, owner, id)
		if err != nil {
			RespondError(c, h.logger, err, "failed to delete transaction")
			return
		}
		month = tx.Date.MonthKey()
	}

	if err := h.transactions.Delete(ctx, owner, id); err != nil {
		RespondError(c, h.logger, err, "failed to delete transaction")
		return
	}

	h.afterWrite(ctx, owner, events.TransactionDeleted, id, month)
	OK(c)
}

func (h *TransactionHandler) categoryKnown(c *gin.Context, owner uint, category string) bool {
	ok, err := h.categories.Exists(c.Request.Context(), owner, category)
	if err != nil {
		RespondError(c, h.logger, err, "failed to check category")
		return false
	}
	if !ok {
		BadRequest(c, "unknown category: "+category)
		return false
	}
	return true
}

// afterWrite refreshes the balances of the touched months and announces the change.
// Failures here never fail the request that caused them.
func (h *TransactionHandler) afterWrite(ctx context.Context, owner uint, t events.Type, id uint, months ...models.Month) {
	entity := strconv.FormatUint(uint64(id), 10)
	seen := make(map[models.Month]bool, len(months))
	for _, m := range months {
		if seen[m] {
			continue
		}
		seen[m] = true
		if h.autoRecalculate && m != "" {
			if _, err := service.RecalculateStored(ctx, h.db, owner, m); err != nil {
				h.logger.WarnContext(ctx, "balance recalculation failed",
					logger.FieldUserID, owner, logger.FieldMonth, m, logger.FieldError, err)
			}
		}
		events.Emit(ctx, h.events, h.logger, events.New(t, owner, m, entity))
	}
	if len(months) == 0 {
		events.Emit(ctx, h.events, h.logger, events.New(t, owner, "", entity))
	}
}
