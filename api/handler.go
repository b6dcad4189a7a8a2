package api

import (
	"log/slog"
	"strconv"

	"budget/events"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Mailer sends the monthly summary. *service.EmailService implements it.
type Mailer interface {
	SendMonthlyReport(toEmail string, report service.MonthlyReport) error
}

// Deps are the shared collaborators of every handler.
type Deps struct {
	DB              *gorm.DB
	Logger          *slog.Logger
	Events          events.Publisher
	Auth            *middleware.Authenticator
	Mailer          Mailer
	AutoRecalculate bool
}

func (d Deps) getLogger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) getPublisher() events.Publisher {
	if d.Events == nil {
		return events.NopPublisher{}
	}
	return d.Events
}

// monthParam parses the :month path segment, answering 400 when it is malformed.
func monthParam(c *gin.Context) (models.Month, bool) {
	m, err := models.ParseMonth(c.Param("month"))
	if err != nil {
		BadRequest(c, "invalid month format, expected YYYY-MM")
		return "", false
	}
	return m, true
}

// monthQuery parses ?month=, which may be absent.
func monthQuery(c *gin.Context) (models.Month, bool) {
	raw := c.Query("month")
	if raw == "" {
		return "", true
	}
	m, err := models.ParseMonth(raw)
	if err != nil {
		BadRequest(c, "invalid month format, expected YYYY-MM")
		return "", false
	}
	return m, true
}

// idParam parses a numeric :id. Anything else cannot match a row, so it is a 404.
func idParam(c *gin.Context, notFound string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		NotFound(c, notFound)
		return 0, false
	}
	return uint(id), true
}
