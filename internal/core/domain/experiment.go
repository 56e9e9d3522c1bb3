package domain

import "time"

// ExperimentID is assigned by the experiment API when the record is created.
type ExperimentID int64

type SubjectSex string

const (
	SexMale        SubjectSex = "male"
	SexFemale      SubjectSex = "female"
	SexUndisclosed SubjectSex = "undisclosed"
)

// PlaybackURL is where the participant is sent once the experiment is armed.
const PlaybackURL = "https://www.youtube.com/"

// Fixed timing of the reference experiment.
const (
	BitrateIntervalMs    int64 = 600_000
	ExperimentDurationMs int64 = 3_000_000
	AssessmentTimeoutMs  int64 = 150_000
)

// SubjectForm is the setup form exactly as submitted.
type SubjectForm struct {
	SubjectAge string
	SubjectSex string
}

// Subject is a validated setup form.
type Subject struct {
	Age int
	Sex SubjectSex
}

// NewExperiment is the body sent to the experiment API.
type NewExperiment struct {
	SubjectAge int        `json:"subjectAge"`
	SubjectSex SubjectSex `json:"subjectSex"`
	Started    string     `json:"started"`
}

// ExperimentRecord is the part of the API response the activator consumes.
type ExperimentRecord struct {
	ID ExperimentID `json:"id"`
}

type ExperimentConfig struct {
	BitrateScenario         Scenario `json:"bitrateScenario"`
	BitrateIntervalMs       int64    `json:"bitrateIntervalMs"`
	ExperimentDurationMs    int64    `json:"experimentDurationMs"`
	AssessmentJitterRangeMs [2]int64 `json:"assessmentJitterRangeMs"`
	AssessmentTimeoutMs     int64    `json:"assessmentTimeoutMs"`
}

// NewExperimentConfig wraps a scenario with the fixed reference timings.
func NewExperimentConfig(scenario Scenario) ExperimentConfig {
	return ExperimentConfig{
		BitrateScenario:         scenario,
		BitrateIntervalMs:       BitrateIntervalMs,
		ExperimentDurationMs:    ExperimentDurationMs,
		AssessmentJitterRangeMs: [2]int64{0, 0},
		AssessmentTimeoutMs:     AssessmentTimeoutMs,
	}
}

// PlaysOut reports whether the run is long enough to hold every scenario step
// for exactly one interval.
func (c ExperimentConfig) PlaysOut() bool {
	return c.ExperimentDurationMs == c.BitrateIntervalMs*int64(len(c.BitrateScenario))
}

type ActivationFlags struct {
	Running      bool         `json:"running"`
	ExperimentID ExperimentID `json:"experimentID"`
}

// Activation is what an activator committed before handing off.
type Activation struct {
	Record           ExperimentRecord
	PermutationIndex int
	Config           ExperimentConfig
	Flags            ActivationFlags
	Target           string
	ActivatedAt      time.Time
}

type Outcome string

const (
	OutcomeStarted           Outcome = "started"
	OutcomeInvalid           Outcome = "invalid"
	OutcomeUpstreamFailed    Outcome = "upstream_failed"
	OutcomePersistenceFailed Outcome = "persistence_failed"
)

// Submission is the result of one setup form submission. Activation is set
// only when Outcome is OutcomeStarted.
type Submission struct {
	Outcome    Outcome
	Subject    Subject
	Started    string
	Activation *Activation
}
