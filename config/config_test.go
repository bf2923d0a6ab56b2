package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig.Valid())
}

func TestPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		require.NoError(t, err)
		assert.NoErrorf(t, cfg.Valid(), "preset %q should validate", name)
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("nonexistent")
	assert.Error(t, err)
}

func TestBuilderFluentChain(t *testing.T) {
	cfg, err := NewBuilder().
		WithTargetCyclesPerOp(5).
		WithBudgets(5, 5, 10).
		WithDiscoveryThreshold(0.7).
		WithStrategies(RestartTransient, OneForAll).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TargetCyclesPerOp)
	assert.Equal(t, 0.7, cfg.DiscoveryConfidenceThreshold)
	assert.Equal(t, RestartTransient, cfg.RestartStrategy)
	assert.Equal(t, OneForAll, cfg.SupervisionStrategy)
}

func TestBuilderFromPresetClonesNotAliases(t *testing.T) {
	b1 := NewBuilder().FromPreset("strict").WithTargetCyclesPerOp(99)
	cfg1, err := b1.Build()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg1.TargetCyclesPerOp)

	strict, _ := Preset("strict")
	assert.Equal(t, 7, strict.TargetCyclesPerOp, "preset must not be mutated by a builder derived from it")
}

func TestBuilderPropagatesPresetError(t *testing.T) {
	_, err := NewBuilder().FromPreset("bogus").WithTargetCyclesPerOp(1).Build()
	assert.Error(t, err)
}

func TestValidRejectsOutOfRangeDiscoveryThreshold(t *testing.T) {
	cfg := DefaultConfig
	cfg.DiscoveryConfidenceThreshold = 1.5
	assert.Error(t, cfg.Valid())
}

func TestValidRejectsNonPowerOfTwoShapeTable(t *testing.T) {
	cfg := DefaultConfig
	cfg.ShapeTableCapacity = 100
	assert.Error(t, cfg.Valid())
}

func TestBackpressureThreshold(t *testing.T) {
	cfg := DefaultConfig
	total := 256 + 128 + 64 + 32
	assert.Equal(t, int(float64(total)*0.9), cfg.BackpressureThreshold(total))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targetCyclesPerOp: 9\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.TargetCyclesPerOp)
	// Everything else still comes from DefaultConfig.
	assert.Equal(t, DefaultConfig.MaxActors, cfg.MaxActors)
}
