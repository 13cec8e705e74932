package settings

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/repository"
	"github.com/Dan9191/salary-bridge/internal/runway"
	"github.com/Dan9191/salary-bridge/internal/storage"
)

type fakeRemote struct {
	mu      sync.Mutex
	rows    map[string]models.RunwayRecord
	upserts int
	err     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: make(map[string]models.RunwayRecord)}
}

func (f *fakeRemote) UpsertSettings(_ context.Context, rec *models.RunwayRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.err != nil {
		return f.err
	}
	f.rows[rec.UserID] = *rec
	return nil
}

func (f *fakeRemote) FindSettings(_ context.Context, userID string) (*models.RunwayRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

type brokenKV struct{}

func (brokenKV) Load(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenKV) Save(context.Context, string, []byte) error   { return errors.New("disk gone") }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func sampleInputs() models.RunwayInputs {
	return models.RunwayInputs{CurrentSalary: 120000, MonthlyExpenses: 5000, TransitionMonths: 8, TargetSalary: 95000}
}

func TestStore_SaveThenLoad(t *testing.T) {
	kv := storage.NewMemoryKV()
	remote := newFakeRemote()
	store := NewStore(kv, remote, time.Second, quietLogger())
	ctx := context.Background()

	plan := &models.FinancialPlan{SavingsStrategy: "save 1k", ExpenseAudits: []string{"cable"}}
	status := store.Save(ctx, &models.RunwayRecord{UserID: "u1", Inputs: sampleInputs(), Plan: plan})
	assert.True(t, status.Local)
	assert.True(t, status.Remote)

	rec, ok := store.Load(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, sampleInputs(), rec.Inputs)
	assert.Equal(t, runway.Compute(sampleInputs()), rec.Result)
	assert.Equal(t, plan, rec.Plan)
	assert.Equal(t, runway.Compute(sampleInputs()), remote.rows["u1"].Result)
}

func TestStore_RemoteFailureStillUpdatesLocal(t *testing.T) {
	kv := storage.NewMemoryKV()
	remote := newFakeRemote()
	remote.err = errors.New("connection refused")
	store := NewStore(kv, remote, time.Second, quietLogger())
	ctx := context.Background()

	status := store.Save(ctx, &models.RunwayRecord{UserID: "u1", Inputs: sampleInputs()})
	assert.True(t, status.Local)
	assert.False(t, status.Remote)
	assert.Error(t, status.RemoteErr)
	assert.Equal(t, 1, remote.upserts, "exactly one remote attempt")

	rec, ok := store.Load(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, 8, rec.Inputs.TransitionMonths)
}

func TestStore_LocalFailureStillWritesRemote(t *testing.T) {
	remote := newFakeRemote()
	store := NewStore(brokenKV{}, remote, time.Second, quietLogger())

	status := store.Save(context.Background(), &models.RunwayRecord{UserID: "u1", Inputs: sampleInputs()})
	assert.False(t, status.Local)
	assert.Error(t, status.LocalErr)
	assert.True(t, status.Remote)
}

func TestStore_LoadFallsBackToRemoteAndBackfills(t *testing.T) {
	kv := storage.NewMemoryKV()
	remote := newFakeRemote()
	remote.rows["u2"] = models.RunwayRecord{UserID: "u2", Inputs: sampleInputs()}
	store := NewStore(kv, remote, time.Second, quietLogger())

	rec, ok := store.Load(context.Background(), "u2")
	require.True(t, ok)
	assert.Equal(t, sampleInputs(), rec.Inputs)
	assert.Equal(t, 1, kv.Len(), "local cache backfilled")
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), newFakeRemote(), time.Second, quietLogger())
	_, ok := store.Load(context.Background(), "ghost")
	assert.False(t, ok)

	offline := NewStore(storage.NewMemoryKV(), nil, time.Second, quietLogger())
	_, ok = offline.Load(context.Background(), "ghost")
	assert.False(t, ok)
}

func TestStore_PartialRecordUsesDefaults(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Save(ctx, keyPrefix+"u3", []byte(`{"inputs":{"current_salary":90000,"monthly_expenses":3000}}`)))
	store := NewStore(kv, nil, time.Second, quietLogger())

	rec, ok := store.Load(ctx, "u3")
	require.True(t, ok)
	assert.Equal(t, runway.DefaultInputs(), rec.Inputs)
	assert.Equal(t, runway.Compute(runway.DefaultInputs()), rec.Result)
}

func TestStore_PartialLocalRecordDefersToRemote(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Save(ctx, keyPrefix+"u6", []byte(`{"inputs":{"current_salary":90000}}`)))
	remote := newFakeRemote()
	remote.rows["u6"] = models.RunwayRecord{UserID: "u6", Inputs: sampleInputs()}
	store := NewStore(kv, remote, time.Second, quietLogger())

	rec, ok := store.Load(ctx, "u6")
	require.True(t, ok)
	assert.Equal(t, sampleInputs(), rec.Inputs)

	rec, ok = store.Load(ctx, "u6")
	require.True(t, ok)
	assert.Equal(t, sampleInputs(), rec.Inputs, "local cache repaired by backfill")
}

func TestStore_PartialLocalRecordWithEmptyRemote(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Save(ctx, keyPrefix+"u7", []byte(`{"email":"u7@example.com","inputs":{"target_salary":0}}`)))
	store := NewStore(kv, newFakeRemote(), time.Second, quietLogger())

	rec, ok := store.Load(ctx, "u7")
	require.True(t, ok)
	assert.Equal(t, runway.DefaultInputs(), rec.Inputs)
	assert.Equal(t, "u7@example.com", rec.Email)
}

func TestStore_ZeroTargetIsNotPartial(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv, nil, time.Second, quietLogger())
	ctx := context.Background()
	in := sampleInputs()
	in.TargetSalary = 0

	store.Save(ctx, &models.RunwayRecord{UserID: "u4", Inputs: in})
	rec, ok := store.Load(ctx, "u4")
	require.True(t, ok)
	assert.Equal(t, 0.0, rec.Inputs.TargetSalary)
	assert.False(t, rec.Result.IsSafe)
}

func TestStore_CorruptLocalValueIsAMiss(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Save(ctx, keyPrefix+"u5", []byte("{not json")))
	store := NewStore(kv, nil, time.Second, quietLogger())

	_, ok := store.Load(ctx, "u5")
	assert.False(t, ok)
}
