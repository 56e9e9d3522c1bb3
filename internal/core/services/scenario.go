package services

import "throttlelab/internal/core/domain"

// PermutationIndex maps an experiment id onto a permutation table row.
// The modulo is Euclidean, so negative ids still land in [0, PermutationCount).
func PermutationIndex(id domain.ExperimentID) int {
	m := int64(id) % domain.PermutationCount
	if m < 0 {
		m += domain.PermutationCount
	}
	return int(m)
}

// BuildScenario returns the bitrate timeline assigned to experiment id.
// The table is recomputed on every call.
func BuildScenario(id domain.ExperimentID) domain.Scenario {
	p := GeneratePermutations(domain.BaseBitrates)[PermutationIndex(id)]

	return domain.Scenario{
		domain.UnconstrainedBitrate,
		p[0], p[1], p[2],
		domain.UnconstrainedBitrate,
	}
}
