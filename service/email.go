package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"budget/config"
	"budget/models"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled is returned when mail is switched off in configuration.
var ErrEmailDisabled = errors.New("email is disabled; set BUDGET_EMAIL_ENABLED=true")

// MonthlyReport is the content of the monthly summary mail.
type MonthlyReport struct {
	Username     string
	Month        models.Month
	Balance      *models.MonthlyBalance
	Totals       Totals
	Categories   []CategoryTotal
	Transactions int
}

// NewMonthlyReport builds a report from a month's balance (may be nil) and transactions.
func NewMonthlyReport(username string, month models.Month, balance *models.MonthlyBalance, txs []models.Transaction) MonthlyReport {
	return MonthlyReport{
		Username:     username,
		Month:        month,
		Balance:      balance,
		Totals:       Summarize(txs),
		Categories:   ByCategory(txs),
		Transactions: len(txs),
	}
}

// EmailService sends mail over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendMonthlyReport mails the summary of one month.
func (s *EmailService) SendMonthlyReport(toEmail string, report MonthlyReport) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}
	subject := fmt.Sprintf("[Budget] Summary for %s", report.Month)
	return s.sendEmail(toEmail, subject, s.generateMonthlyReportBody(report))
}

// SendTestEmail checks the SMTP settings.
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return ErrEmailDisabled
	}
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>Mail settings work</h2>
    <p>If you can read this, the budget service can reach your mailbox.</p>
</body>
</html>
`
	return s.sendEmail(toEmail, "[Budget] Mail configuration test", body)
}

func (s *EmailService) generateMonthlyReportBody(r MonthlyReport) string {
	balanceRows := `<p class="muted">No balance has been set for this month.</p>`
	if r.Balance != nil {
		balanceRows = fmt.Sprintf(`
            <table>
                <tr><td>Initial balance</td><td class="num">%s</td></tr>
                <tr><td>Current balance</td><td class="num"><strong>%s</strong></td></tr>
            </table>`,
			money(r.Balance.InitialBalance), money(r.Totals.CurrentBalance(r.Balance.InitialBalance)))
	}

	var cats strings.Builder
	for _, c := range r.Categories {
		fmt.Fprintf(&cats, "<tr><td>%s</td><td>%s</td><td class=\"num\">%s</td><td class=\"num\">%d</td></tr>\n",
			html.EscapeString(c.Category), c.Type, money(c.Amount), c.Count)
	}
	if cats.Len() == 0 {
		cats.WriteString(`<tr><td colspan="4" class="muted">No transactions this month.</td></tr>`)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 30px; }
        table { width: 100%%; border-collapse: collapse; margin: 10px 0 20px; }
        td, th { padding: 8px; border-bottom: 1px solid #eee; text-align: left; }
        .num { text-align: right; }
        .income { color: #10b981; }
        .expense { color: #ef4444; }
        .muted { color: #6c757d; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Budget summary %s</h1>
        </div>
        <div class="content">
            <p>Hello <strong>%s</strong>, here is how %s went.</p>
            %s
            <table>
                <tr><td>Income</td><td class="num income">%s</td></tr>
                <tr><td>Expense</td><td class="num expense">%s</td></tr>
                <tr><td>Transactions</td><td class="num">%d</td></tr>
            </table>
            <table>
                <tr><th>Category</th><th>Type</th><th class="num">Amount</th><th class="num">Count</th></tr>
                %s
            </table>
        </div>
        <div class="footer">
            <p>This message was sent automatically. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, r.Month, html.EscapeString(r.Username), r.Month, balanceRows,
		money(r.Totals.Income), money(r.Totals.Expense), r.Transactions, cats.String())
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
