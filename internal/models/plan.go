package models

// FinancialPlan represents the narrative produced for a runway result.
// Field names follow the generative response schema and are stored verbatim.
type FinancialPlan struct {
	SavingsStrategy     string   `json:"savingsStrategy"`
	ExpenseAudits       []string `json:"expenseAudits"`
	SafetyNetAssessment string   `json:"safetyNetAssessment"`
	BridgeTactics       string   `json:"bridgeTactics"`
}

// PlanOutcome represents the result of one narrative request
type PlanOutcome struct {
	Plan     FinancialPlan `json:"financial_plan"`
	Fallback bool          `json:"fallback"`
	Sequence uint64        `json:"sequence"`
	Err      error         `json:"-"` // Cause of the fallback, if any
}
