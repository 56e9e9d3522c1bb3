package ports

import (
	"context"

	"throttlelab/internal/core/domain"
)

// ExperimentClient creates experiment records upstream.
type ExperimentClient interface {
	CreateExperiment(ctx context.Context, req domain.NewExperiment) (*domain.ExperimentRecord, error)
}

// Navigator performs the hand-off to the playback context. Nothing the caller
// does after Navigate returns is guaranteed to run.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

type ExperimentActivator interface {
	Activate(ctx context.Context, record domain.ExperimentRecord, nav Navigator) (*domain.Activation, error)
}

type SetupService interface {
	Submit(ctx context.Context, form domain.SubjectForm, nav Navigator) (*domain.Submission, error)
}

// ExperimentState is the runtime's view of the stores.
type ExperimentState interface {
	Active(ctx context.Context) (*domain.ActivationFlags, *domain.ExperimentConfig, error)
	Finish(ctx context.Context) error
}

// ActivationRecorder receives activation telemetry.
type ActivationRecorder interface {
	RecordOutcome(outcome domain.Outcome)
	RecordAssignment(permutationIndex int)
	ObservePersist(seconds float64)
	ObserveUpstream(seconds float64)
}
