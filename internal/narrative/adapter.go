// Package narrative turns a runway result into a written financial plan using
// an external text-generation service, with a canned fallback.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/models"
)

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 20 * time.Second

var (
	// ErrNoCredential means no text service is configured
	ErrNoCredential = errors.New("text generation credential not configured")
	// ErrMalformedPlan means the service answered with something that is not a plan
	ErrMalformedPlan = errors.New("malformed financial plan response")
)

// Generator sends a prompt to a text service and returns the raw JSON answer
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Adapter produces financial plans
type Adapter struct {
	gen     Generator
	timeout time.Duration
	log     *logrus.Logger
}

// NewAdapter creates an adapter. gen may be nil, in which case every call
// returns the fallback plan.
func NewAdapter(gen Generator, timeout time.Duration, log *logrus.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{gen: gen, timeout: timeout, log: log}
}

// Generate makes exactly one call to the text service and never fails: any
// error yields the fallback plan with Fallback set and Err holding the cause.
func (a *Adapter) Generate(ctx context.Context, in models.RunwayInputs, res models.RunwayResult) models.PlanOutcome {
	plan, err := a.request(ctx, in, res)
	if err != nil {
		a.log.Warnf("Financial plan generation failed, using fallback: %v", err)
		return models.PlanOutcome{Plan: Fallback(in, res), Fallback: true, Err: err}
	}
	return models.PlanOutcome{Plan: plan}
}

// GenerateAsync runs Generate in the background. The channel receives exactly
// one outcome and is then closed.
func (a *Adapter) GenerateAsync(ctx context.Context, in models.RunwayInputs, res models.RunwayResult) <-chan models.PlanOutcome {
	out := make(chan models.PlanOutcome, 1)
	go func() {
		defer close(out)
		out <- a.Generate(ctx, in, res)
	}()
	return out
}

func (a *Adapter) request(ctx context.Context, in models.RunwayInputs, res models.RunwayResult) (models.FinancialPlan, error) {
	if a.gen == nil {
		return models.FinancialPlan{}, ErrNoCredential
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.Generate(ctx, BuildPrompt(in, res))
	if err != nil {
		return models.FinancialPlan{}, fmt.Errorf("text service request failed: %w", err)
	}
	return ParsePlan(text)
}

// ParsePlan decodes the four-field JSON answer. Markdown code fences around
// the JSON are tolerated.
func ParsePlan(text string) (models.FinancialPlan, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var plan models.FinancialPlan
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &plan); err != nil {
		return models.FinancialPlan{}, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if plan.SavingsStrategy == "" || plan.SafetyNetAssessment == "" || plan.BridgeTactics == "" || len(plan.ExpenseAudits) == 0 {
		return models.FinancialPlan{}, fmt.Errorf("%w: missing fields", ErrMalformedPlan)
	}
	return plan, nil
}
