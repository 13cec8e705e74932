package repository

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS bridge;

CREATE TABLE IF NOT EXISTS bridge.runway_settings (
    user_id                  TEXT PRIMARY KEY,
    email                    TEXT,
    current_salary           DOUBLE PRECISION NOT NULL,
    monthly_expenses         DOUBLE PRECISION NOT NULL,
    transition_months        INTEGER NOT NULL,
    target_salary            DOUBLE PRECISION NOT NULL,
    bridge_amount            DOUBLE PRECISION NOT NULL,
    net_monthly_gap          DOUBLE PRECISION NOT NULL,
    is_safe                  BOOLEAN NOT NULL,
    risk_score               DOUBLE PRECISION NOT NULL,
    estimated_savings_months INTEGER NOT NULL,
    financial_plan           JSONB,
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bridge.salary_scenarios (
    id                UUID PRIMARY KEY,
    user_id           TEXT NOT NULL,
    current_salary    DOUBLE PRECISION NOT NULL,
    monthly_expenses  DOUBLE PRECISION NOT NULL,
    transition_months INTEGER NOT NULL,
    target_salary     DOUBLE PRECISION NOT NULL,
    financial_plan    JSONB,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_salary_scenarios_user ON bridge.salary_scenarios(user_id, created_at DESC);
`
