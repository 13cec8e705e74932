package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dan9191/salary-bridge/internal/models"
)

// ErrNotFound is returned when a user has no stored row
var ErrNotFound = errors.New("runway settings not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// UpsertSettings writes the single row kept for a user, replacing any previous one
func (r *Repository) UpsertSettings(ctx context.Context, rec *models.RunwayRecord) error {
	plan, err := marshalPlan(rec.Plan)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bridge.runway_settings (
			user_id, email, current_salary, monthly_expenses, transition_months, target_salary,
			bridge_amount, net_monthly_gap, is_safe, risk_score, estimated_savings_months,
			financial_plan, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, bridge.runway_settings.email),
			current_salary = EXCLUDED.current_salary,
			monthly_expenses = EXCLUDED.monthly_expenses,
			transition_months = EXCLUDED.transition_months,
			target_salary = EXCLUDED.target_salary,
			bridge_amount = EXCLUDED.bridge_amount,
			net_monthly_gap = EXCLUDED.net_monthly_gap,
			is_safe = EXCLUDED.is_safe,
			risk_score = EXCLUDED.risk_score,
			estimated_savings_months = EXCLUDED.estimated_savings_months,
			financial_plan = EXCLUDED.financial_plan,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Email,
		rec.Inputs.CurrentSalary, rec.Inputs.MonthlyExpenses, rec.Inputs.TransitionMonths, rec.Inputs.TargetSalary,
		rec.Result.BridgeAmount, rec.Result.NetMonthlyGap, rec.Result.IsSafe, rec.Result.RiskScore,
		rec.Result.EstimatedSavingsMonths, plan,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert runway settings: %w", err)
	}
	return nil
}

// FindSettings retrieves the stored row for a user. Only inputs and the plan
// are read back; the result is recomputed by the caller.
func (r *Repository) FindSettings(ctx context.Context, userID string) (*models.RunwayRecord, error) {
	rec := &models.RunwayRecord{UserID: userID}
	var email sql.NullString
	var plan []byte
	query := `
		SELECT email, current_salary, monthly_expenses, transition_months, target_salary,
			financial_plan, updated_at
		FROM bridge.runway_settings
		WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&email,
		&rec.Inputs.CurrentSalary, &rec.Inputs.MonthlyExpenses, &rec.Inputs.TransitionMonths, &rec.Inputs.TargetSalary,
		&plan, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find runway settings: %w", err)
	}

	rec.Email = email.String
	if rec.Plan, err = unmarshalPlan(plan); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateScenario appends a snapshot to the user's scenario history
func (r *Repository) CreateScenario(ctx context.Context, sc *models.Scenario) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	plan, err := marshalPlan(sc.Plan)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bridge.salary_scenarios (
			id, user_id, current_salary, monthly_expenses, transition_months, target_salary,
			financial_plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		sc.ID, sc.UserID,
		sc.Inputs.CurrentSalary, sc.Inputs.MonthlyExpenses, sc.Inputs.TransitionMonths, sc.Inputs.TargetSalary,
		plan,
	).Scan(&sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// ListScenarios returns the user's most recent scenarios, newest first
func (r *Repository) ListScenarios(ctx context.Context, userID string, limit int) ([]models.Scenario, error) {
	query := `
		SELECT id, user_id, current_salary, monthly_expenses, transition_months, target_salary,
			financial_plan, created_at
		FROM bridge.salary_scenarios
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		var sc models.Scenario
		var plan []byte
		if err := rows.Scan(&sc.ID, &sc.UserID,
			&sc.Inputs.CurrentSalary, &sc.Inputs.MonthlyExpenses, &sc.Inputs.TransitionMonths, &sc.Inputs.TargetSalary,
			&plan, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		if sc.Plan, err = unmarshalPlan(plan); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// ListDigestRecipients returns every stored row that has an email address
func (r *Repository) ListDigestRecipients(ctx context.Context) ([]models.RunwayRecord, error) {
	query := `
		SELECT user_id, email, current_salary, monthly_expenses, transition_months, target_salary, updated_at
		FROM bridge.runway_settings
		WHERE email IS NOT NULL
		ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	defer rows.Close()

	var records []models.RunwayRecord
	for rows.Next() {
		var rec models.RunwayRecord
		if err := rows.Scan(&rec.UserID, &rec.Email,
			&rec.Inputs.CurrentSalary, &rec.Inputs.MonthlyExpenses, &rec.Inputs.TransitionMonths, &rec.Inputs.TargetSalary,
			&rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// marshalPlan encodes plan for a JSONB column; a nil plan is stored as NULL
func marshalPlan(plan *models.FinancialPlan) (sql.NullString, error) {
	if plan == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode financial plan: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalPlan(data []byte) (*models.FinancialPlan, error) {
	if len(data) == 0 {
		return nil, nil
	}
	plan := &models.FinancialPlan{}
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to decode financial plan: %w", err)
	}
	return plan, nil
}
