package services

import (
	"context"
	"errors"
	"fmt"

	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"

	"go.uber.org/zap"
)

// StateService reads back what an activation committed. It is the view the
// experiment runtime has of the stores.
type StateService struct {
	settings  ports.KVStore
	variables ports.KVStore
	logger    *zap.SugaredLogger
}

func NewStateService(settings, variables ports.KVStore, logger *zap.SugaredLogger) *StateService {
	return &StateService{
		settings:  settings,
		variables: variables,
		logger:    logger,
	}
}

// Active returns the flags and config of the running experiment, or
// domain.ErrNoActiveExperiment when nothing is running.
func (s *StateService) Active(ctx context.Context) (*domain.ActivationFlags, *domain.ExperimentConfig, error) {
	var flags domain.ActivationFlags
	if err := s.variables.Get(ctx, domain.KeyRunning, &flags.Running); err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, nil, domain.ErrNoActiveExperiment
		}
		return nil, nil, fmt.Errorf("read %s: %w", domain.KeyRunning, err)
	}
	if !flags.Running {
		return nil, nil, domain.ErrNoActiveExperiment
	}
	if err := s.variables.Get(ctx, domain.KeyExperimentID, &flags.ExperimentID); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", domain.KeyExperimentID, err)
	}

	var config domain.ExperimentConfig
	fields := []struct {
		key  string
		dest any
	}{
		{domain.KeyBitrateScenario, &config.BitrateScenario},
		{domain.KeyBitrateIntervalMs, &config.BitrateIntervalMs},
		{domain.KeyExperimentDurationMs, &config.ExperimentDurationMs},
		{domain.KeyAssessmentJitterRangeMs, &config.AssessmentJitterRangeMs},
		{domain.KeyAssessmentTimeoutMs, &config.AssessmentTimeoutMs},
	}
	for _, f := range fields {
		if err := s.settings.Get(ctx, f.key, f.dest); err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", f.key, err)
		}
	}

	return &flags, &config, nil
}

// Finish clears the running flag once the runtime has played the scenario out.
func (s *StateService) Finish(ctx context.Context) error {
	if err := s.variables.Set(ctx, domain.KeyRunning, false); err != nil {
		return fmt.Errorf("clear %s: %w", domain.KeyRunning, err)
	}
	s.logger.Info("experiment marked finished")
	return nil
}
