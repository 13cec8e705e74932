package runway

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/salary-bridge/internal/models"
)

func TestCompute_SafeScenario(t *testing.T) {
	res := Compute(models.RunwayInputs{
		CurrentSalary:    150000,
		MonthlyExpenses:  6000,
		TransitionMonths: 6,
		TargetSalary:     110000,
	})

	assert.Equal(t, 36000.0, res.BridgeAmount)
	assert.InDelta(t, 6416.67, res.MonthlyNetTarget, 0.01)
	assert.InDelta(t, 416.67, res.NetMonthlyGap, 0.01)
	assert.True(t, res.IsSafe)
	assert.Equal(t, 80.0, res.RiskScore)
	// surplus 12500-6000 = 6500, 36000/6500 = 5.54
	assert.Equal(t, 6, res.EstimatedSavingsMonths)
}

func TestCompute_DeficitWithBurnPenalty(t *testing.T) {
	res := Compute(models.RunwayInputs{
		CurrentSalary:    150000,
		MonthlyExpenses:  6000,
		TransitionMonths: 20,
		TargetSalary:     40000,
	})

	assert.Equal(t, 120000.0, res.BridgeAmount)
	assert.InDelta(t, 2333.33, res.MonthlyNetTarget, 0.01)
	assert.InDelta(t, -3666.67, res.NetMonthlyGap, 0.01)
	assert.False(t, res.IsSafe)
	// 50 - 30.56 - 20 is below zero
	assert.Equal(t, 0.0, res.RiskScore)
}

func TestCompute_DeficitWithoutBurnPenalty(t *testing.T) {
	res := Compute(models.RunwayInputs{
		CurrentSalary:    200000,
		MonthlyExpenses:  5000,
		TransitionMonths: 3,
		TargetSalary:     60000,
	})

	// net target 3500, gap -1500, penalty 1500/5000*50 = 15
	assert.False(t, res.IsSafe)
	assert.InDelta(t, 35.0, res.RiskScore, 1e-9)
}

func TestCompute_ZeroTargetSalary(t *testing.T) {
	in := models.RunwayInputs{
		CurrentSalary:    90000,
		MonthlyExpenses:  4000,
		TransitionMonths: 4,
		TargetSalary:     0,
	}
	res := Compute(in)

	assert.False(t, res.IsSafe)
	assert.Equal(t, -in.MonthlyExpenses, res.NetMonthlyGap)
	assert.Equal(t, 0.0, res.MonthlyNetTarget)
}

func TestCompute_SavingsMonthsDivisionGuard(t *testing.T) {
	res := Compute(models.RunwayInputs{
		CurrentSalary:    24000, // 2000 a month
		MonthlyExpenses:  5000,
		TransitionMonths: 12,
		TargetSalary:     50000,
	})

	require.False(t, math.IsInf(float64(res.EstimatedSavingsMonths), 0))
	assert.Equal(t, 60000, res.EstimatedSavingsMonths)
}

func TestCompute_Idempotent(t *testing.T) {
	in := models.RunwayInputs{
		CurrentSalary:    123457,
		MonthlyExpenses:  4321.5,
		TransitionMonths: 17,
		TargetSalary:     98765,
	}
	first := Compute(in)
	second := Compute(in)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Compute not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, math.Float64bits(first.RiskScore), math.Float64bits(second.RiskScore))
}

func TestCompute_Properties(t *testing.T) {
	salaries := []float64{1, 12000, 50000, 150000, 500000, 1e9}
	expenses := []float64{0.01, 500, 2000, 6000, 20000, 1e7}
	targets := []float64{0, 40000, 110000, 300000}

	for _, cs := range salaries {
		for _, me := range expenses {
			for months := 1; months <= 36; months += 7 {
				for _, ts := range targets {
					in := models.RunwayInputs{
						CurrentSalary:    cs,
						MonthlyExpenses:  me,
						TransitionMonths: months,
						TargetSalary:     ts,
					}
					res := Compute(in)

					require.Equal(t, me*float64(months), res.BridgeAmount, "bridge for %+v", in)
					require.GreaterOrEqual(t, res.RiskScore, 0.0, "score for %+v", in)
					require.LessOrEqual(t, res.RiskScore, 100.0, "score for %+v", in)
					require.Equal(t, res.NetMonthlyGap >= 0, res.IsSafe, "safety for %+v", in)
					require.GreaterOrEqual(t, res.EstimatedSavingsMonths, 1, "months for %+v", in)
					require.False(t, math.IsNaN(res.RiskScore) || math.IsNaN(res.NetMonthlyGap))
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultInputs()
	require.NoError(t, Validate(valid))

	zeroTarget := valid
	zeroTarget.TargetSalary = 0
	assert.NoError(t, Validate(zeroTarget))

	tests := []struct {
		name   string
		mutate func(*models.RunwayInputs)
	}{
		{"zero salary", func(in *models.RunwayInputs) { in.CurrentSalary = 0 }},
		{"negative expenses", func(in *models.RunwayInputs) { in.MonthlyExpenses = -1 }},
		{"zero months", func(in *models.RunwayInputs) { in.TransitionMonths = 0 }},
		{"negative target", func(in *models.RunwayInputs) { in.TargetSalary = -5 }},
		{"NaN salary", func(in *models.RunwayInputs) { in.CurrentSalary = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.ErrorIs(t, Validate(in), ErrInvalidInputs)
		})
	}
}

func TestClampMonths(t *testing.T) {
	assert.Equal(t, 1, ClampMonths(-3))
	assert.Equal(t, 12, ClampMonths(12))
	assert.Equal(t, 24, ClampMonths(48))
}
