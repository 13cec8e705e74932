package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/salary-bridge/internal/models"
)

func openTestRepository(t *testing.T) *Repository {
	t.Helper()
	conn := os.Getenv("TEST_DB_CONN")
	if conn == "" {
		t.Skip("TEST_DB_CONN not set")
	}
	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepository_UpsertSettingsOverwrites(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	userID := "test-" + uuid.New().String()

	rec := &models.RunwayRecord{
		UserID: userID,
		Email:  "pivot@example.com",
		Inputs: models.RunwayInputs{CurrentSalary: 150000, MonthlyExpenses: 6000, TransitionMonths: 6, TargetSalary: 110000},
	}
	require.NoError(t, repo.UpsertSettings(ctx, rec))

	rec.Email = ""
	rec.Inputs.TransitionMonths = 9
	rec.Plan = &models.FinancialPlan{SavingsStrategy: "save", ExpenseAudits: []string{"a"}}
	require.NoError(t, repo.UpsertSettings(ctx, rec))

	got, err := repo.FindSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Inputs.TransitionMonths)
	assert.Equal(t, "pivot@example.com", got.Email, "empty email keeps the stored one")
	require.NotNil(t, got.Plan)
	assert.Equal(t, "save", got.Plan.SavingsStrategy)
}

func TestRepository_FindSettingsMissing(t *testing.T) {
	repo := openTestRepository(t)
	_, err := repo.FindSettings(context.Background(), "nobody-"+uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Scenarios(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	userID := "test-" + uuid.New().String()

	for months := 3; months <= 5; months++ {
		sc := &models.Scenario{
			UserID: userID,
			Inputs: models.RunwayInputs{CurrentSalary: 100000, MonthlyExpenses: 4000, TransitionMonths: months, TargetSalary: 90000},
		}
		require.NoError(t, repo.CreateScenario(ctx, sc))
		assert.NotEmpty(t, sc.ID)
	}

	list, err := repo.ListScenarios(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Inputs.TransitionMonths)
}
