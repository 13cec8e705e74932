// Package settings persists runway inputs, results and plans per user.
//
// Every save goes to the local tier first and then makes one best-effort
// upsert to the remote tier. Remote failures are logged and reported in the
// SaveStatus, never returned as errors.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/repository"
	"github.com/Dan9191/salary-bridge/internal/runway"
	"github.com/Dan9191/salary-bridge/internal/storage"
)

const keyPrefix = "runway:v1:"

// Remote is the structured store holding one row per user
type Remote interface {
	UpsertSettings(ctx context.Context, rec *models.RunwayRecord) error
	FindSettings(ctx context.Context, userID string) (*models.RunwayRecord, error)
}

// SaveStatus reports which tiers accepted a save
type SaveStatus struct {
	Local     bool  `json:"local"`
	Remote    bool  `json:"remote"`
	LocalErr  error `json:"-"`
	RemoteErr error `json:"-"`
}

// Store combines the local cache and the remote upsert
type Store struct {
	local         storage.KV
	remote        Remote
	remoteTimeout time.Duration
	log           *logrus.Logger
	now           func() time.Time
}

// NewStore creates a store. remote may be nil when no database is configured.
func NewStore(local storage.KV, remote Remote, remoteTimeout time.Duration, log *logrus.Logger) *Store {
	if remoteTimeout <= 0 {
		remoteTimeout = 10 * time.Second
	}
	return &Store{
		local:         local,
		remote:        remote,
		remoteTimeout: remoteTimeout,
		log:           log,
		now:           time.Now,
	}
}

// storedRecord is the local cache layout. Inputs are pointers so a record
// written by an older client with missing fields can be told apart from a
// legitimate zero target salary.
type storedRecord struct {
	Email     string                `json:"email,omitempty"`
	Inputs    storedInputs          `json:"inputs"`
	Result    *models.RunwayResult  `json:"result,omitempty"`
	Plan      *models.FinancialPlan `json:"financial_plan,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type storedInputs struct {
	CurrentSalary    *float64 `json:"current_salary"`
	MonthlyExpenses  *float64 `json:"monthly_expenses"`
	TransitionMonths *int     `json:"transition_months"`
	TargetSalary     *float64 `json:"target_salary"`
}

func (s storedInputs) complete() (models.RunwayInputs, bool) {
	if s.CurrentSalary == nil || s.MonthlyExpenses == nil || s.TransitionMonths == nil || s.TargetSalary == nil {
		return models.RunwayInputs{}, false
	}
	return models.RunwayInputs{
		CurrentSalary:    *s.CurrentSalary,
		MonthlyExpenses:  *s.MonthlyExpenses,
		TransitionMonths: *s.TransitionMonths,
		TargetSalary:     *s.TargetSalary,
	}, true
}

// Load returns the stored record for userID. The result is always recomputed
// from the stored inputs. An incomplete local record is treated as a miss;
// it yields defaults only when the remote tier has nothing better. The
// boolean is false when neither tier has a record.
func (s *Store) Load(ctx context.Context, userID string) (*models.RunwayRecord, bool) {
	local, complete := s.loadLocal(ctx, userID)
	if local != nil && complete {
		return local, true
	}
	if rec, ok := s.loadRemote(ctx, userID); ok {
		return rec, true
	}
	if local != nil {
		s.log.WithField("user_id", userID).Info("Stored settings incomplete, using defaults")
		return local, true
	}
	return nil, false
}

func (s *Store) loadRemote(ctx context.Context, userID string) (*models.RunwayRecord, bool) {
	if s.remote == nil {
		return nil, false
	}

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	rec, err := s.remote.FindSettings(rctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithField("user_id", userID).Warnf("Remote settings load failed: %v", err)
		}
		return nil, false
	}

	rec.UserID = userID
	s.normalize(rec)
	if err := s.saveLocal(ctx, rec); err != nil {
		s.log.WithField("user_id", userID).Warnf("Failed to backfill local cache: %v", err)
	}
	return rec, true
}

// loadLocal returns nil on a miss. An incomplete record comes back with
// default inputs and complete set to false.
func (s *Store) loadLocal(ctx context.Context, userID string) (rec *models.RunwayRecord, complete bool) {
	data, err := s.local.Load(ctx, keyPrefix+userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("user_id", userID).Warnf("Local settings load failed: %v", err)
		}
		return nil, false
	}

	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.WithField("user_id", userID).Warnf("Discarding unreadable local settings: %v", err)
		return nil, false
	}

	rec = &models.RunwayRecord{
		UserID:    userID,
		Email:     stored.Email,
		Plan:      stored.Plan,
		UpdatedAt: stored.UpdatedAt,
	}
	inputs, complete := stored.Inputs.complete()
	if !complete {
		inputs = runway.DefaultInputs()
	}
	rec.Inputs = inputs
	s.normalize(rec)
	return rec, complete
}

// normalize replaces out-of-domain inputs with defaults and recomputes the result
func (s *Store) normalize(rec *models.RunwayRecord) {
	if err := runway.Validate(rec.Inputs); err != nil {
		s.log.WithField("user_id", rec.UserID).Infof("Stored settings rejected (%v), using defaults", err)
		rec.Inputs = runway.DefaultInputs()
	}
	rec.Result = runway.Compute(rec.Inputs)
}

// Save writes rec locally and then upserts it remotely. The result is
// recomputed from rec.Inputs before anything is written.
func (s *Store) Save(ctx context.Context, rec *models.RunwayRecord) SaveStatus {
	var status SaveStatus
	rec.Result = runway.Compute(rec.Inputs)
	rec.UpdatedAt = s.now().UTC()

	logger := s.log.WithField("user_id", rec.UserID)
	if err := s.saveLocal(ctx, rec); err != nil {
		status.LocalErr = err
		logger.Errorf("Failed to save settings locally: %v", err)
	} else {
		status.Local = true
	}

	if s.remote == nil {
		return status
	}

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	if err := s.remote.UpsertSettings(rctx, rec); err != nil {
		status.RemoteErr = err
		logger.Errorf("Failed to sync settings remotely: %v", err)
	} else {
		status.Remote = true
	}
	return status
}

func (s *Store) saveLocal(ctx context.Context, rec *models.RunwayRecord) error {
	in := rec.Inputs
	result := rec.Result
	data, err := json.Marshal(storedRecord{
		Email: rec.Email,
		Inputs: storedInputs{
			CurrentSalary:    &in.CurrentSalary,
			MonthlyExpenses:  &in.MonthlyExpenses,
			TransitionMonths: &in.TransitionMonths,
			TargetSalary:     &in.TargetSalary,
		},
		Result:    &result,
		Plan:      rec.Plan,
		UpdatedAt: rec.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.local.Save(ctx, keyPrefix+rec.UserID, data)
}
