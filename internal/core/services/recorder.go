package services

import (
	"throttlelab/internal/core/domain"
	"throttlelab/internal/core/ports"
)

type noopRecorder struct{}

func (noopRecorder) RecordOutcome(domain.Outcome) {}
func (noopRecorder) RecordAssignment(int)         {}
func (noopRecorder) ObservePersist(float64)       {}
func (noopRecorder) ObserveUpstream(float64)      {}

func recorderOrNoop(r ports.ActivationRecorder) ports.ActivationRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
