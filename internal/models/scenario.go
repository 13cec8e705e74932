package models

import "time"

// Scenario represents a saved snapshot of inputs and the plan generated for them
type Scenario struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Inputs    RunwayInputs   `json:"inputs"`
	Plan      *FinancialPlan `json:"financial_plan,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
