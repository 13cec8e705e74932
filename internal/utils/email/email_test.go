package email

import (
	"errors"
	"io"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/salary-bridge/internal/config"
	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/runway"
)

func testRecord() *models.RunwayRecord {
	in := models.RunwayInputs{CurrentSalary: 150000, MonthlyExpenses: 6000, TransitionMonths: 6, TargetSalary: 110000}
	return &models.RunwayRecord{
		UserID: "u1",
		Inputs: in,
		Result: runway.Compute(in),
		Plan: &models.FinancialPlan{
			SavingsStrategy:     "Save $6,000 a month.",
			ExpenseAudits:       []string{"Cancel gym", "Cook at home"},
			SafetyNetAssessment: "Low risk.",
			BridgeTactics:       "Consult.",
		},
	}
}

func newTestSender(t *testing.T) (*Sender, *[]*email.Email) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewSender(&config.Config{SenderEmail: "plans@example.com"}, log)
	var sent []*email.Email
	s.send = func(e *email.Email) error {
		sent = append(sent, e)
		return nil
	}
	return s, &sent
}

func TestSendPlan(t *testing.T) {
	s, sent := newTestSender(t)
	require.NoError(t, s.SendPlan("pivot@example.com", testRecord()))
	require.Len(t, *sent, 1)

	e := (*sent)[0]
	assert.Equal(t, []string{"pivot@example.com"}, e.To)
	assert.Equal(t, "plans@example.com", e.From)
	body := string(e.Text)
	assert.Contains(t, body, "$36,000")
	assert.Contains(t, body, "  - Cook at home")
}

func TestSendPlan_NoPlan(t *testing.T) {
	s, sent := newTestSender(t)
	rec := testRecord()
	rec.Plan = nil
	assert.Error(t, s.SendPlan("pivot@example.com", rec))
	assert.Empty(t, *sent)
}

func TestSendDigest(t *testing.T) {
	s, sent := newTestSender(t)
	require.NoError(t, s.SendDigest("pivot@example.com", testRecord()))
	require.Len(t, *sent, 1)
	assert.Equal(t, "Weekly Runway Check: On Track", (*sent)[0].Subject)
	assert.Contains(t, string((*sent)[0].Text), "Risk score: 80/100")
}

func TestSendDigest_Failure(t *testing.T) {
	s, _ := newTestSender(t)
	s.send = func(*email.Email) error { return errors.New("smtp down") }
	assert.Error(t, s.SendDigest("pivot@example.com", testRecord()))
}
