package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
	"throttlelab/pkg/tracing"
	"throttlelab/pkg/validation"

	"go.uber.org/zap"
)

// StartedLayout matches the ISO-8601 form the experiment API expects.
const StartedLayout = "2006-01-02T15:04:05.000Z07:00"

// SetupService runs a setup form submission end to end: validate, create the
// experiment record, activate.
type SetupService struct {
	client    ports.ExperimentClient
	activator ports.ExperimentActivator
	recorder  ports.ActivationRecorder
	logger    *zap.SugaredLogger
	clock     func() time.Time
}

func NewSetupService(
	client ports.ExperimentClient,
	activator ports.ExperimentActivator,
	recorder ports.ActivationRecorder,
	logger *zap.SugaredLogger,
) *SetupService {
	return &SetupService{
		client:    client,
		activator: activator,
		recorder:  recorderOrNoop(recorder),
		logger:    logger,
		clock:     time.Now,
	}
}

// SetClock replaces the clock used to stamp the started time.
func (s *SetupService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Submit always returns a Submission describing how far the flow got. The
// error wraps domain.ErrInvalidSubject, domain.ErrUpstreamFailed or
// domain.ErrPersistenceFailed so callers can tell the outcomes apart.
func (s *SetupService) Submit(ctx context.Context, form domain.SubjectForm, nav ports.Navigator) (*domain.Submission, error) {
	subject, err := validation.ValidateSubjectForm(form)
	if err != nil {
		submission := &domain.Submission{Outcome: domain.OutcomeInvalid}
		s.record(ctx, submission)
		return submission, fmt.Errorf("%w: %w", domain.ErrInvalidSubject, err)
	}

	submission := &domain.Submission{
		Subject: subject,
		Started: s.clock().Format(StartedLayout),
	}

	start := time.Now()
	record, err := s.client.CreateExperiment(ctx, domain.NewExperiment{
		SubjectAge: subject.Age,
		SubjectSex: subject.Sex,
		Started:    submission.Started,
	})
	s.recorder.ObserveUpstream(time.Since(start).Seconds())
	if err != nil {
		s.logger.Errorw("experiment record creation failed",
			"subject_age", subject.Age,
			"subject_sex", subject.Sex,
			"error", err,
		)
		submission.Outcome = domain.OutcomeUpstreamFailed
		s.record(ctx, submission)
		return submission, fmt.Errorf("%w: %w", domain.ErrUpstreamFailed, err)
	}

	activation, err := s.activator.Activate(ctx, *record, nav)
	if err != nil && errors.Is(err, domain.ErrPersistenceFailed) {
		submission.Outcome = domain.OutcomePersistenceFailed
		s.record(ctx, submission)
		return submission, err
	}

	// The configuration is committed even if the hand-off itself reported an error.
	submission.Outcome = domain.OutcomeStarted
	submission.Activation = activation
	s.record(ctx, submission)
	return submission, err
}

func (s *SetupService) record(ctx context.Context, submission *domain.Submission) {
	s.recorder.RecordOutcome(submission.Outcome)
	tracing.AddSpanAttributes(ctx, tracing.OutcomeKey.String(string(submission.Outcome)))
}
