package domain

import "errors"

var (
	ErrKeyNotFound         = errors.New("key not found")
	ErrUpstreamFailed      = errors.New("experiment record creation failed")
	ErrPersistenceFailed   = errors.New("experiment configuration not persisted")
	ErrNoActiveExperiment  = errors.New("no active experiment")
	ErrInvalidSubject      = errors.New("invalid subject")
	ErrMissingExperimentID = errors.New("experiment record has no id")
)
