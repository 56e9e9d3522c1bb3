package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"throttlelab/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltKVStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "throttlelab.db")

	db, err := Open(path)
	require.NoError(t, err)
	settings, err := NewBoltKVStore(db, "settings")
	require.NoError(t, err)
	variables, err := NewBoltKVStore(db, "variables")
	require.NoError(t, err)

	cfg := domain.NewExperimentConfig(domain.Scenario{1_250_000_000, 75_000, 37_500, 125_000, 1_250_000_000})
	require.NoError(t, settings.SetAll(ctx, cfg.SettingsEntries()))
	require.NoError(t, variables.SetAll(ctx, domain.ActivationFlags{Running: true, ExperimentID: 2}.VariablesEntries()))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	settings, err = NewBoltKVStore(db, "settings")
	require.NoError(t, err)
	variables, err = NewBoltKVStore(db, "variables")
	require.NoError(t, err)

	var scenario domain.Scenario
	require.NoError(t, settings.Get(ctx, domain.KeyBitrateScenario, &scenario))
	assert.Equal(t, cfg.BitrateScenario, scenario)

	var id domain.ExperimentID
	require.NoError(t, variables.Get(ctx, domain.KeyExperimentID, &id))
	assert.Equal(t, domain.ExperimentID(2), id)

	// Namespaces do not leak into each other.
	var running bool
	assert.ErrorIs(t, settings.Get(ctx, domain.KeyRunning, &running), domain.ErrKeyNotFound)
}

func TestBoltKVStore_SetAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer db.Close()

	store, err := NewBoltKVStore(db, "variables")
	require.NoError(t, err)

	err = store.SetAll(ctx, []domain.Entry{
		{Key: domain.KeyRunning, Value: true},
		{Key: domain.KeyExperimentID, Value: make(chan int)},
	})
	require.Error(t, err)

	var running bool
	assert.ErrorIs(t, store.Get(ctx, domain.KeyRunning, &running), domain.ErrKeyNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestBoltKVStore_CancelledContext(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer db.Close()

	store, err := NewBoltKVStore(db, "settings")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Set(ctx, domain.KeyBitrateIntervalMs, int64(1)), context.Canceled)
}
