package domain

// BitrateValue is a throttling target in bytes per second.
type BitrateValue int64

// Permutation is one ordering of the three throttled bitrates.
type Permutation [3]BitrateValue

// PermutationTable holds every ordering of a Permutation's values in
// swap-backtracking order. Row indexes are assigned to participants, so the
// order must never change.
type PermutationTable [PermutationCount]Permutation

// Scenario is the bitrate timeline of one participant:
// [sentinel, p0, p1, p2, sentinel].
type Scenario [ScenarioLength]BitrateValue

const (
	PermutationCount = 6
	ScenarioLength   = 5

	// UnconstrainedBitrate bookends every scenario and stands for "no throttling".
	UnconstrainedBitrate BitrateValue = 1_250_000_000
)

// BaseBitrates are the throttled steps, lowest first.
var BaseBitrates = Permutation{37_500, 75_000, 125_000}
