package api

import (
	"log/slog"
	"net/http"

	"budget/apperror"
	"budget/logger"
	"budget/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. Code and Suggestion are set
// only for infrastructure failures.
type ErrorResponse struct {
	Error      string `json:"error" example:"transaction not found"`
	Code       string `json:"code,omitempty" example:"ECONNREFUSED"`
	Suggestion string `json:"suggestion,omitempty" example:"Start the database service"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// IDResponse returns the id of a created row.
type IDResponse struct {
	ID uint `json:"id" example:"42"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"category deleted"`
}

// OK answers {"success": true}.
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// RespondError classifies err and writes the matching status and body. Server-side
// failures are logged; their details are hidden in release mode.
func RespondError(c *gin.Context, log *slog.Logger, err error, fallback string) {
	_ = c.Error(err)
	kind := apperror.Classify(err)
	switch kind {
	case apperror.KindInfrastructure:
		info, _ := apperror.DetectInfrastructure(err)
		log.ErrorContext(c.Request.Context(), "database unavailable",
			logger.FieldRequestID, middleware.RequestID(c),
			logger.FieldPath, c.FullPath(),
			logger.FieldError, err)
		c.JSON(kind.Status(), ErrorResponse{Error: info.Message, Code: info.Code, Suggestion: info.Suggestion})
	case apperror.KindUnclassified:
		log.ErrorContext(c.Request.Context(), fallback,
			logger.FieldRequestID, middleware.RequestID(c),
			logger.FieldPath, c.FullPath(),
			logger.FieldError, err)
		Error(c, kind.Status(), SafeErrorMessage(err, fallback))
	default:
		Error(c, kind.Status(), apperror.Message(err, fallback))
	}
}
