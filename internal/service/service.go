package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Dan9191/salary-bridge/internal/export"
	"github.com/Dan9191/salary-bridge/internal/models"
	"github.com/Dan9191/salary-bridge/internal/narrative"
	"github.com/Dan9191/salary-bridge/internal/runway"
	"github.com/Dan9191/salary-bridge/internal/settings"
)

const (
	historyLimit      = 20
	digestConcurrency = 4
)

var (
	// ErrSuperseded is returned when a newer plan request or input save for the same user was issued
	ErrSuperseded = errors.New("plan request superseded by newer inputs or request")
	// ErrNoPlan is returned when an operation needs a stored plan
	ErrNoPlan = errors.New("no financial plan stored")
	// ErrNoEmail is returned when the caller identity carries no email address
	ErrNoEmail = errors.New("no email address for user")
	// ErrUnavailable is returned when an optional collaborator is not configured
	ErrUnavailable = errors.New("feature not configured")
)

// ScenarioStore keeps the history of generated plans
type ScenarioStore interface {
	CreateScenario(ctx context.Context, sc *models.Scenario) error
	ListScenarios(ctx context.Context, userID string, limit int) ([]models.Scenario, error)
}

// DigestSource lists the users that receive the weekly digest
type DigestSource interface {
	ListDigestRecipients(ctx context.Context) ([]models.RunwayRecord, error)
}

// Mailer sends plan and digest emails
type Mailer interface {
	SendPlan(to string, rec *models.RunwayRecord) error
	SendDigest(to string, rec *models.RunwayRecord) error
}

// Options carries the optional collaborators. Nil fields disable the
// features that need them.
type Options struct {
	Scenarios ScenarioStore
	Digest    DigestSource
	Mailer    Mailer
}

// Service handles business logic
type Service struct {
	store     *settings.Store
	narrator  *narrative.Adapter
	seq       *narrative.Sequencer
	scenarios ScenarioStore
	digest    DigestSource
	mailer    Mailer
	log       *logrus.Logger
}

// NewService initializes a new service
func NewService(store *settings.Store, narrator *narrative.Adapter, log *logrus.Logger, opts Options) *Service {
	return &Service{
		store:     store,
		narrator:  narrator,
		seq:       narrative.NewSequencer(),
		scenarios: opts.Scenarios,
		digest:    opts.Digest,
		mailer:    opts.Mailer,
		log:       log,
	}
}

// Compute validates inputs and returns the derived result without storing anything
func (s *Service) Compute(in models.RunwayInputs) (models.RunwayResult, error) {
	if err := runway.Validate(in); err != nil {
		return models.RunwayResult{}, err
	}
	return runway.Compute(in), nil
}

// GetRunway returns the user's stored record, or defaults when none exists
func (s *Service) GetRunway(ctx context.Context, user Identity) *models.RunwayRecord {
	if rec, ok := s.store.Load(ctx, user.UserID); ok {
		return rec
	}
	in := runway.DefaultInputs()
	return &models.RunwayRecord{UserID: user.UserID, Email: user.Email, Inputs: in, Result: runway.Compute(in)}
}

// SaveRunway stores new inputs. A stored plan is kept only while the inputs
// it was generated for are unchanged. Any plan request still in flight for
// the user becomes stale.
func (s *Service) SaveRunway(ctx context.Context, user Identity, in models.RunwayInputs) (*models.RunwayRecord, settings.SaveStatus, error) {
	if err := runway.Validate(in); err != nil {
		return nil, settings.SaveStatus{}, err
	}
	in.TransitionMonths = runway.ClampMonths(in.TransitionMonths)

	s.seq.Next(user.UserID)
	defer s.seq.Release(user.UserID)
	unlock := s.seq.Lock(user.UserID)
	defer unlock()

	rec := s.GetRunway(ctx, user)
	if rec.Inputs != in {
		rec.Plan = nil
	}
	rec.Inputs = in
	if user.Email != "" {
		rec.Email = user.Email
	}

	status := s.store.Save(ctx, rec)
	s.log.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"local":   status.Local,
		"remote":  status.Remote,
	}).Info("Runway settings saved")
	return rec, status, nil
}

// GeneratePlan requests a narrative for the user's inputs (or in, when given)
// and persists it. A result that arrives after a newer plan request or input
// save for the same user is discarded with ErrSuperseded.
func (s *Service) GeneratePlan(ctx context.Context, user Identity, in *models.RunwayInputs) (*models.RunwayRecord, models.PlanOutcome, error) {
	var planned models.RunwayInputs
	if in != nil {
		if err := runway.Validate(*in); err != nil {
			return nil, models.PlanOutcome{}, err
		}
		planned = *in
		planned.TransitionMonths = runway.ClampMonths(in.TransitionMonths)
	}

	seq := s.seq.Next(user.UserID)
	defer s.seq.Release(user.UserID)
	logger := s.log.WithFields(logrus.Fields{"user_id": user.UserID, "sequence": seq})

	if in == nil {
		planned = s.GetRunway(ctx, user).Inputs
	}
	result := runway.Compute(planned)

	outcome := s.narrator.Generate(ctx, planned, result)
	outcome.Sequence = seq

	unlock := s.seq.Lock(user.UserID)
	defer unlock()
	if !s.seq.IsLatest(user.UserID, seq) {
		logger.Info("Discarding superseded financial plan")
		return nil, outcome, ErrSuperseded
	}

	rec := s.GetRunway(ctx, user)
	rec.Inputs = planned
	if user.Email != "" {
		rec.Email = user.Email
	}
	plan := outcome.Plan
	rec.Plan = &plan
	s.store.Save(ctx, rec)

	if s.scenarios != nil {
		sc := &models.Scenario{UserID: user.UserID, Inputs: rec.Inputs, Plan: rec.Plan}
		if err := s.scenarios.CreateScenario(ctx, sc); err != nil {
			logger.Errorf("Failed to record scenario: %v", err)
		}
	}

	logger.WithField("fallback", outcome.Fallback).Info("Financial plan generated")
	return rec, outcome, nil
}

// EmailPlan sends the stored plan to the user's email address
func (s *Service) EmailPlan(ctx context.Context, user Identity) error {
	if s.mailer == nil {
		return fmt.Errorf("%w: email", ErrUnavailable)
	}
	if user.Email == "" {
		return ErrNoEmail
	}
	rec, ok := s.store.Load(ctx, user.UserID)
	if !ok || rec.Plan == nil {
		return ErrNoPlan
	}
	return s.mailer.SendPlan(user.Email, rec)
}

// History returns the user's most recent scenarios
func (s *Service) History(ctx context.Context, user Identity) ([]models.Scenario, error) {
	if s.scenarios == nil {
		return nil, fmt.Errorf("%w: scenario history", ErrUnavailable)
	}
	return s.scenarios.ListScenarios(ctx, user.UserID, historyLimit)
}

// ExportXML renders the user's current record as XML
func (s *Service) ExportXML(ctx context.Context, user Identity) ([]byte, error) {
	return export.RecordXML(s.GetRunway(ctx, user))
}

// SendDigests emails every recipient a summary recomputed from their stored
// inputs. Individual send failures are logged and counted, not returned.
func (s *Service) SendDigests(ctx context.Context) (int, error) {
	if s.digest == nil || s.mailer == nil {
		return 0, fmt.Errorf("%w: digest", ErrUnavailable)
	}
	recipients, err := s.digest.ListDigestRecipients(ctx)
	if err != nil {
		return 0, err
	}

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)
	for i := range recipients {
		rec := &recipients[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := runway.Validate(rec.Inputs); err != nil {
				s.log.WithField("user_id", rec.UserID).Warnf("Skipping digest: %v", err)
				return nil
			}
			rec.Result = runway.Compute(rec.Inputs)
			if err := s.mailer.SendDigest(rec.Email, rec); err != nil {
				s.log.WithField("user_id", rec.UserID).Errorf("Failed to send digest: %v", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}

	s.log.Infof("Weekly digest sent to %d of %d recipients", sent.Load(), len(recipients))
	return int(sent.Load()), nil
}
