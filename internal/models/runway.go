package models

import "time"

// RunwayInputs represents the four calculator inputs set by the user
type RunwayInputs struct {
	CurrentSalary    float64 `json:"current_salary"`    // Annual
	MonthlyExpenses  float64 `json:"monthly_expenses"`  // Burn rate
	TransitionMonths int     `json:"transition_months"` // Months without the current paycheck
	TargetSalary     float64 `json:"target_salary"`     // Annual, 0 allowed
}

// RunwayResult represents the values derived from RunwayInputs
type RunwayResult struct {
	BridgeAmount           float64 `json:"bridge_amount"`
	MonthlyNetTarget       float64 `json:"monthly_net_target"`
	NetMonthlyGap          float64 `json:"net_monthly_gap"`
	IsSafe                 bool    `json:"is_safe"`
	RiskScore              float64 `json:"risk_score"` // 0..100
	EstimatedSavingsMonths int     `json:"estimated_savings_months"`
}

// RunwayRecord represents everything persisted for one user
type RunwayRecord struct {
	UserID    string         `json:"user_id"`
	Email     string         `json:"email,omitempty"`
	Inputs    RunwayInputs   `json:"inputs"`
	Result    RunwayResult   `json:"result"`
	Plan      *FinancialPlan `json:"financial_plan,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
