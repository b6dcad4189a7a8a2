package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"budget/apperror"
	"budget/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthResponse reports whether the store is reachable.
type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	Database   string `json:"database" example:"connected"`
	Error      string `json:"error,omitempty"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type HealthHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHealthHandler(deps Deps) *HealthHandler {
	return &HealthHandler{db: deps.DB, logger: deps.getLogger()}
}

// Check pings the database
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	err := database.Ping(ctx, h.db)
	if err == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "connected"})
		return
	}

	h.logger.ErrorContext(ctx, "health check failed", "error", err)
	resp := HealthResponse{Status: "unhealthy", Database: "disconnected", Error: SafeErrorMessage(err, "database unreachable")}
	if info, ok := apperror.DetectInfrastructure(err); ok {
		resp.Error, resp.Code, resp.Suggestion = info.Message, info.Code, info.Suggestion
	}
	c.JSON(http.StatusServiceUnavailable, resp)
}
