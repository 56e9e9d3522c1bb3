package services

import (
	"context"
	"fmt"
	"time"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
	"throttlelab/pkg/tracing"

	"go.uber.org/zap"
)

// ActivationService arms an experiment: it commits the participant's
// configuration and flags, then hands off to the playback context.
type ActivationService struct {
	settings  ports.KVStore
	variables ports.KVStore
	recorder  ports.ActivationRecorder
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewActivationService(
	settings ports.KVStore,
	variables ports.KVStore,
	recorder ports.ActivationRecorder,
	logger *zap.SugaredLogger,
) *ActivationService {
	return &ActivationService{
		settings:  settings,
		variables: variables,
		recorder:  recorderOrNoop(recorder),
		logger:    logger,
		now:       time.Now,
	}
}

// Activate persists the experiment and navigates away. Navigation happens
// only after both stores have acknowledged their writes; a persistence
// failure returns an error wrapping domain.ErrPersistenceFailed and nav is
// never called.
func (s *ActivationService) Activate(ctx context.Context, record domain.ExperimentRecord, nav ports.Navigator) (*domain.Activation, error) {
	ctx, span := tracing.TraceActivation(ctx, int64(record.ID))
	defer span.End()

	index := PermutationIndex(record.ID)
	config := domain.NewExperimentConfig(BuildScenario(record.ID))
	flags := domain.ActivationFlags{Running: true, ExperimentID: record.ID}

	tracing.AddSpanAttributes(ctx, tracing.PermutationKey.Int(index))

	start := time.Now()
	if err := s.commit(ctx, "settings", s.settings, config.SettingsEntries()); err != nil {
		return nil, s.persistFailed(ctx, record, err)
	}
	// Flags go last: a participant is only "running" once the full config is stored.
	if err := s.commit(ctx, "variables", s.variables, flags.VariablesEntries()); err != nil {
		return nil, s.persistFailed(ctx, record, err)
	}
	s.recorder.ObservePersist(time.Since(start).Seconds())
	s.recorder.RecordAssignment(index)

	activation := &domain.Activation{
		Record:           record,
		PermutationIndex: index,
		Config:           config,
		Flags:            flags,
		Target:           domain.PlaybackURL,
		ActivatedAt:      s.now(),
	}

	s.logger.Infow("experiment armed",
		"experiment_id", record.ID,
		"permutation", index,
		"scenario", config.BitrateScenario,
		"target", domain.PlaybackURL,
	)

	if err := nav.Navigate(ctx, domain.PlaybackURL); err != nil {
		tracing.RecordError(ctx, err)
		return activation, fmt.Errorf("hand-off to %s: %w", domain.PlaybackURL, err)
	}

	return activation, nil
}

func (s *ActivationService) commit(ctx context.Context, namespace string, store ports.KVStore, entries []domain.Entry) error {
	ctx, span := tracing.TraceStoreWrite(ctx, namespace, len(entries))
	defer span.End()

	if err := store.SetAll(ctx, entries); err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("write %s: %w", namespace, err)
	}
	return nil
}

func (s *ActivationService) persistFailed(ctx context.Context, record domain.ExperimentRecord, err error) error {
	tracing.RecordError(ctx, err)
	s.logger.Errorw("failed to persist experiment",
		"experiment_id", record.ID,
		"error", err,
	)
	return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
}
