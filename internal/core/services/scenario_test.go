package services

import (
	"fmt"
	"testing"

	"throttlelab/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildScenario(t *testing.T) {
	tests := []struct {
		id   domain.ExperimentID
		want domain.Scenario
	}{
		{0, domain.Scenario{1_250_000_000, 37_500, 75_000, 125_000, 1_250_000_000}},
		{1, domain.Scenario{1_250_000_000, 37_500, 125_000, 75_000, 1_250_000_000}},
		{2, domain.Scenario{1_250_000_000, 75_000, 37_500, 125_000, 1_250_000_000}},
		{3, domain.Scenario{1_250_000_000, 75_000, 125_000, 37_500, 1_250_000_000}},
		{4, domain.Scenario{1_250_000_000, 125_000, 75_000, 37_500, 1_250_000_000}},
		{5, domain.Scenario{1_250_000_000, 125_000, 37_500, 75_000, 1_250_000_000}},
		{7, domain.Scenario{1_250_000_000, 37_500, 125_000, 75_000, 1_250_000_000}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("id=%d", tt.id), func(t *testing.T) {
			assert.Equal(t, tt.want, BuildScenario(tt.id))
		})
	}
}

func TestBuildScenario_Periodic(t *testing.T) {
	for id := domain.ExperimentID(-30); id <= 30; id++ {
		assert.Equal(t, BuildScenario(id), BuildScenario(id+domain.PermutationCount), "id %d", id)

		s := BuildScenario(id)
		assert.Equal(t, domain.UnconstrainedBitrate, s[0])
		assert.Equal(t, domain.UnconstrainedBitrate, s[domain.ScenarioLength-1])
	}
}

func TestBuildScenario_NegativeIDs(t *testing.T) {
	assert.Equal(t, BuildScenario(5), BuildScenario(-1))
	assert.Equal(t, BuildScenario(0), BuildScenario(-6))
	assert.Equal(t, 5, PermutationIndex(-1))
	assert.Equal(t, 0, PermutationIndex(-6))
}

func TestPermutationIndex_Range(t *testing.T) {
	for _, id := range []domain.ExperimentID{-1 << 62, -7, -1, 0, 1, 6, 1 << 62} {
		idx := PermutationIndex(id)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, domain.PermutationCount)
	}
}

func TestNewExperimentConfig_PlaysOut(t *testing.T) {
	cfg := domain.NewExperimentConfig(BuildScenario(3))

	assert.True(t, cfg.PlaysOut())
	assert.Equal(t, int64(600_000), cfg.BitrateIntervalMs)
	assert.Equal(t, int64(3_000_000), cfg.ExperimentDurationMs)
	assert.Equal(t, [2]int64{0, 0}, cfg.AssessmentJitterRangeMs)
	assert.Equal(t, int64(150_000), cfg.AssessmentTimeoutMs)

	cfg.ExperimentDurationMs++
	assert.False(t, cfg.PlaysOut())
}
