package config

import (
	"fmt"
	"time"
)

// DefaultConfig mirrors the defaults enumerated in spec.md §6.
var DefaultConfig = Config{
	TargetCyclesPerOp:   7,
	HistogramSaturation: 1000,

	L1BudgetCycles: 7,
	L2BudgetCycles: 7,
	L3BudgetCycles: 14,

	ShapeTableCapacity:     128,
	MaxConstraintsPerShape: 16,
	MaxValidationDepth:     16,
	MaxMemoryPerNode:       1 << 20,
	MaxMemoryPerGraph:      1 << 26,

	DiscoveryConfidenceThreshold: 0.85,
	DiscoveryMinObservations:     3,
	DiscoveryRingSize:            256,
	MaxCandidates:                64,

	MailboxRingCapacities: []int{256, 128, 64, 32},
	BackpressureFraction:  0.9,
	DeadLetterCapacity:    128,

	MaxMailboxes:   1024,
	MaxActors:      4096,
	MaxSupervisors: 256,

	RestartStrategy:      RestartPermanent,
	SupervisionStrategy:  OneForOne,
	MaxRestartsPerWindow: 5,
	RestartWindow:        10 * time.Second,

	ReasonerMaxDepth:     6,
	ReasonerBudgetCycles: 2,

	EffectivenessEWMAAlpha:       0.1,
	FrequencyAdaptationThreshold: 0.05,
	FrequencyLearningRate:        0.1,
}

// StrictBudgetConfig tightens every cycle budget to its floor,
// trading discovery/reasoner headroom for a harder real-time
// guarantee — the "strict" preset a latency-sensitive deployment
// would choose.
var StrictBudgetConfig = func() Config {
	c := DefaultConfig
	c.L1BudgetCycles = 7
	c.L2BudgetCycles = 7
	c.L3BudgetCycles = 7
	c.ReasonerBudgetCycles = 1
	c.ReasonerMaxDepth = 2
	return c
}()

// RelaxedDiscoveryConfig lowers the discovery engine's initial
// confidence threshold to its 0.5 floor and widens its ring size and
// candidate buffer for a workload that wants the pattern
// classifier to promote signatures more readily, at the cost of a
// looser L3 budget to absorb its extra maintenance work.
var RelaxedDiscoveryConfig = func() Config {
	c := DefaultConfig
	c.DiscoveryConfidenceThreshold = 0.5
	c.DiscoveryRingSize = 512
	c.MaxCandidates = 128
	c.L3BudgetCycles = 28
	return c
}()

// PresetNames returns all available preset names.
func PresetNames() []string {
	return []string{"default", "strict", "relaxed-discovery"}
}

// Preset returns a copy of the named preset configuration.
func Preset(name string) (Config, error) {
	switch name {
	case "default":
		return DefaultConfig, nil
	case "strict":
		return StrictBudgetConfig, nil
	case "relaxed-discovery":
		return RelaxedDiscoveryConfig, nil
	default:
		return Config{}, fmt.Errorf("unknown preset: %s", name)
	}
}
