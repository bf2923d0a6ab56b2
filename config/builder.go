package config

import "time"

// Builder provides a fluent interface for constructing a Config,
// grounded on the teacher's config.Builder (WithSampleSize-style
// chaining, FromPreset, error sticks on the first failing call).
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder returns a Builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	cfg := DefaultConfig
	return &Builder{cfg: &cfg}
}

// FromPreset replaces the builder's working config with a clone of
// the named preset.
func (b *Builder) FromPreset(name string) *Builder {
	if b.err != nil {
		return b
	}
	preset, err := Preset(name)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg = &preset
	return b
}

// WithTargetCyclesPerOp overrides the per-operation cycle budget.
func (b *Builder) WithTargetCyclesPerOp(n int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.TargetCyclesPerOp = n
	return b
}

// WithBudgets overrides the L1/L2/L3 cycle budgets.
func (b *Builder) WithBudgets(l1, l2, l3 int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.L1BudgetCycles, b.cfg.L2BudgetCycles, b.cfg.L3BudgetCycles = l1, l2, l3
	return b
}

// WithDiscoveryThreshold overrides the initial discovery confidence
// threshold.
func (b *Builder) WithDiscoveryThreshold(t float64) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.DiscoveryConfidenceThreshold = t
	return b
}

// WithRestartWindow overrides the supervisor restart rate-limit
// window.
func (b *Builder) WithRestartWindow(window time.Duration, maxRestarts int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.RestartWindow = window
	b.cfg.MaxRestartsPerWindow = maxRestarts
	return b
}

// WithStrategies overrides the restart/supervision strategy pair.
func (b *Builder) WithStrategies(restart RestartStrategy, supervision SupervisionStrategy) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.RestartStrategy = restart
	b.cfg.SupervisionStrategy = supervision
	return b
}

// Build validates the accumulated configuration and returns it.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if err := b.cfg.Valid(); err != nil {
		return Config{}, err
	}
	return *b.cfg, nil
}
