package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"budget/logger"
	"budget/middleware"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves /reports.
type ReportHandler struct {
	users        *repository.UserRepository
	balances     *repository.BalanceRepository
	transactions *repository.TransactionRepository
	mailer       Mailer
	logger       *slog.Logger
}

func NewReportHandler(deps Deps) *ReportHandler {
	return &ReportHandler{
		users:        repository.NewUserRepository(deps.DB),
		balances:     repository.NewBalanceRepository(deps.DB),
		transactions: repository.NewTransactionRepository(deps.DB),
		mailer:       deps.Mailer,
		logger:       deps.getLogger(),
	}
}

// EmailMonthly mails the month's summary to the current user
// @Summary Email monthly report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /reports/{month}/email [post]
func (h *ReportHandler) EmailMonthly(c *gin.Context) {
	owner := middleware.GetCurrentUserID(c)
	month, ok := monthParam(c)
	if !ok {
		return
	}
	if h.mailer == nil {
		Error(c, http.StatusServiceUnavailable, service.ErrEmailDisabled.Error())
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.Get(ctx, owner)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load user")
		return
	}
	if strings.TrimSpace(user.Email) == "" {
		BadRequest(c, "no email address on file")
		return
	}

	balance, err := h.balances.Get(ctx, owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load balance")
		return
	}
	txs, err := h.transactions.List(ctx, owner, month)
	if err != nil {
		RespondError(c, h.logger, err, "failed to load transactions")
		return
	}

	report := service.NewMonthlyReport(user.Username, month, balance, txs)
	if err := h.mailer.SendMonthlyReport(user.Email, report); err != nil {
		if errors.Is(err, service.ErrEmailDisabled) {
			Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "report mail failed", logger.FieldUserID, owner, logger.FieldMonth, month, logger.FieldError, err)
		Error(c, http.StatusBadGateway, SafeErrorMessage(err, "failed to send email"))
		return
	}
	OK(c)
}
