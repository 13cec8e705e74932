// Package runway computes the salary bridge for a career transition.
//
// The tax rate and score weights are a fixed, simplified estimate shown to
// users as such. They are not meant to model real tax brackets.
package runway

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dan9191/salary-bridge/internal/models"
)

const (
	// TaxRate is the flat rate applied to the target salary
	TaxRate = 0.30

	baseScore        = 50.0
	safeBonus        = 30.0
	deficitWeight    = 50.0
	burnPenalty      = 20.0
	burnSalaryFactor = 0.5

	// MinMonths and MaxMonths bound the transition slider
	MinMonths = 1
	MaxMonths = 24
)

// ErrInvalidInputs is returned by Validate for inputs outside the numeric domain
var ErrInvalidInputs = errors.New("invalid runway inputs")

// DefaultInputs returns the values used when nothing valid is stored
func DefaultInputs() models.RunwayInputs {
	return models.RunwayInputs{
		CurrentSalary:    150000,
		MonthlyExpenses:  6000,
		TransitionMonths: 6,
		TargetSalary:     110000,
	}
}

// Compute derives the runway result. It is pure and never returns NaN or Inf
// for finite positive salary and expenses.
func Compute(in models.RunwayInputs) models.RunwayResult {
	bridge := in.MonthlyExpenses * float64(in.TransitionMonths)
	netTarget := in.TargetSalary * (1 - TaxRate) / 12
	gap := netTarget - in.MonthlyExpenses
	safe := gap >= 0

	return models.RunwayResult{
		BridgeAmount:           bridge,
		MonthlyNetTarget:       netTarget,
		NetMonthlyGap:          gap,
		IsSafe:                 safe,
		RiskScore:              riskScore(in, bridge, gap, safe),
		EstimatedSavingsMonths: savingsMonths(in, bridge),
	}
}

func riskScore(in models.RunwayInputs, bridge, gap float64, safe bool) float64 {
	score := baseScore
	if safe {
		score += safeBonus
	} else if in.MonthlyExpenses > 0 {
		score -= math.Abs(gap) / in.MonthlyExpenses * deficitWeight
	}
	if bridge > in.CurrentSalary*burnSalaryFactor {
		score -= burnPenalty
	}
	return math.Max(0, math.Min(100, score))
}

// savingsMonths floors the monthly surplus at 1 so a zero or negative surplus
// still yields a finite month count.
func savingsMonths(in models.RunwayInputs, bridge float64) int {
	surplus := math.Max(1, in.CurrentSalary/12-in.MonthlyExpenses)
	months := math.Ceil(bridge / surplus)
	switch {
	case math.IsNaN(months) || months < 1:
		return 1
	case months > math.MaxInt32:
		return math.MaxInt32
	}
	return int(months)
}

// Validate reports inputs the calculator is not meant to receive
func Validate(in models.RunwayInputs) error {
	switch {
	case !finite(in.CurrentSalary) || in.CurrentSalary <= 0:
		return fmt.Errorf("%w: current salary must be positive", ErrInvalidInputs)
	case !finite(in.MonthlyExpenses) || in.MonthlyExpenses <= 0:
		return fmt.Errorf("%w: monthly expenses must be positive", ErrInvalidInputs)
	case in.TransitionMonths < 1:
		return fmt.Errorf("%w: transition months must be at least 1", ErrInvalidInputs)
	case !finite(in.TargetSalary) || in.TargetSalary < 0:
		return fmt.Errorf("%w: target salary must not be negative", ErrInvalidInputs)
	}
	return nil
}

// ClampMonths limits a transition length to the slider range
func ClampMonths(n int) int {
	if n < MinMonths {
		return MinMonths
	}
	if n > MaxMonths {
		return MaxMonths
	}
	return n
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
