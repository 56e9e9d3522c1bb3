package domain

// Settings store keys.
const (
	KeyBitrateScenario         = "bitrateScenario"
	KeyBitrateIntervalMs       = "bitrateIntervalMs"
	KeyExperimentDurationMs    = "experimentDurationMs"
	KeyAssessmentJitterRangeMs = "assessmentJitterRangeMs"
	KeyAssessmentTimeoutMs     = "assessmentTimeoutMs"
)

// Variables store keys.
const (
	KeyRunning      = "running"
	KeyExperimentID = "experimentID"
)

// Entry is one key/value pair written to a store.
type Entry struct {
	Key   string
	Value any
}

// SettingsEntries lists the config keys in the order they are written.
func (c ExperimentConfig) SettingsEntries() []Entry {
	return []Entry{
		{Key: KeyBitrateScenario, Value: c.BitrateScenario},
		{Key: KeyBitrateIntervalMs, Value: c.BitrateIntervalMs},
		{Key: KeyExperimentDurationMs, Value: c.ExperimentDurationMs},
		{Key: KeyAssessmentJitterRangeMs, Value: c.AssessmentJitterRangeMs},
		{Key: KeyAssessmentTimeoutMs, Value: c.AssessmentTimeoutMs},
	}
}

func (f ActivationFlags) VariablesEntries() []Entry {
	return []Entry{
		{Key: KeyRunning, Value: f.Running},
		{Key: KeyExperimentID, Value: f.ExperimentID},
	}
}
