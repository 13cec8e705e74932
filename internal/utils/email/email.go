package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/config"
	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/utils"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

// SendPlan emails the stored financial plan for a record
func (s *Sender) SendPlan(to string, rec *models.RunwayRecord) error {
	if rec.Plan == nil {
		return fmt.Errorf("no financial plan to send")
	}
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your Salary Bridge Financial Plan"
	e.Text = []byte(PlanBody(rec))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send plan email to %s: %v", to, err)
		return fmt.Errorf("failed to send plan email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendDigest emails the weekly runway summary
func (s *Sender) SendDigest(to string, rec *models.RunwayRecord) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if rec.Result.IsSafe {
		e.Subject = "Weekly Runway Check: On Track"
	} else {
		e.Subject = "Weekly Runway Check: Gap Detected"
	}
	e.Text = []byte(DigestBody(rec))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}

// PlanBody renders the plan email text
func PlanBody(rec *models.RunwayRecord) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "Here is your plan for a %d-month transition (required freedom capital: %s).\n\n",
		rec.Inputs.TransitionMonths, utils.FormatCurrency(rec.Result.BridgeAmount))

	b.WriteString("SAVINGS STRATEGY\n")
	b.WriteString(rec.Plan.SavingsStrategy + "\n\n")
	b.WriteString("IMMEDIATE EXPENSE AUDITS\n")
	for _, item := range rec.Plan.ExpenseAudits {
		b.WriteString("  - " + item + "\n")
	}
	b.WriteString("\nRISK ASSESSMENT\n")
	b.WriteString(rec.Plan.SafetyNetAssessment + "\n\n")
	b.WriteString("BRIDGE TACTIC\n")
	b.WriteString(rec.Plan.BridgeTactics + "\n")
	b.WriteString("\nValues are estimated post-tax (approx 30%).\n\nBest regards,\nSalary Bridge")
	return b.String()
}

// DigestBody renders the weekly summary text
func DigestBody(rec *models.RunwayRecord) string {
	res := rec.Result
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "Required freedom capital: %s for %d months.\n",
		utils.FormatCurrency(res.BridgeAmount), rec.Inputs.TransitionMonths)
	fmt.Fprintf(&b, "Est. target net income: %s/mo\n", utils.FormatCurrency(res.MonthlyNetTarget))
	fmt.Fprintf(&b, "Net cashflow after the move: %s/mo\n", utils.FormatCurrency(res.NetMonthlyGap))
	fmt.Fprintf(&b, "Risk score: %.0f/100\n", res.RiskScore)
	fmt.Fprintf(&b, "Est. savings time: ~%d mo\n", res.EstimatedSavingsMonths)
	if res.IsSafe {
		b.WriteString("\nYour target salary covers your burn rate. Keep building the runway.\n")
	} else {
		b.WriteString("\nYour burn rate exceeds your target income. Consider extending your timeline or adjusting lifestyle.\n")
	}
	b.WriteString("\nBest regards,\nSalary Bridge")
	return b.String()
}
