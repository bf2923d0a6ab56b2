package tick

import "sync"

// HistogramBins is the number of bins in the per-operation-cost
// histogram; operations at or above this many cycles saturate into
// the last bin (spec.md §3, "Tick metrics").
const HistogramBins = 1000

// TargetCycles is the per-operation cycle budget the whole core is
// engineered against.
const TargetCycles = 7

// Instrumentation records elapsed-cycle samples into a 1000-bin
// histogram and maintains the running totals needed to derive
// sigma/Cpk/DPM on demand. Safe for concurrent use: the hot path
// (Record) takes a single mutex around a handful of integer additions,
// which is the amortized ≤2-tick operation spec.md §4.1 requires.
type Instrumentation struct {
	clock Clock

	mu              sync.Mutex
	histogram       [HistogramBins]uint64
	totalOperations uint64
	totalCycles     uint64
	perKind         map[OpKind]*kindTotals
}

type kindTotals struct {
	operations uint64
	cycles     uint64
}

// New returns an Instrumentation reading cycles from clock.
func New(clock Clock) *Instrumentation {
	return &Instrumentation{
		clock:   clock,
		perKind: make(map[OpKind]*kindTotals),
	}
}

// Now returns the current monotonic cycle count.
func (in *Instrumentation) Now() uint64 {
	return in.clock.Now()
}

// Record accounts one operation's elapsed cycles (end-start) into the
// histogram, saturating at bin HistogramBins-1. end must be >= start;
// callers on the hot path guarantee this by construction (a single
// Now()/Now() pair), so Record does not re-validate it.
func (in *Instrumentation) Record(kind OpKind, start, end uint64) {
	d := end - start
	bin := d
	if bin >= HistogramBins {
		bin = HistogramBins - 1
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.histogram[bin]++
	in.totalOperations++
	in.totalCycles, _ = addSat(in.totalCycles, d)

	kt, ok := in.perKind[kind]
	if !ok {
		kt = &kindTotals{}
		in.perKind[kind] = kt
	}
	kt.operations++
	kt.cycles, _ = addSat(kt.cycles, d)
}

// Snapshot returns a point-in-time copy of the histogram and totals,
// safe to pass to Compute without holding the instrumentation's lock
// while computing derived statistics.
func (in *Instrumentation) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	snap := Snapshot{
		TotalOperations: in.totalOperations,
		TotalCycles:     in.totalCycles,
	}
	snap.Histogram = in.histogram

	snap.PerKind = make(map[OpKind]KindSnapshot, len(in.perKind))
	for k, v := range in.perKind {
		snap.PerKind[k] = KindSnapshot{Operations: v.operations, Cycles: v.cycles}
	}
	return snap
}

// Snapshot is an immutable point-in-time view of the instrumentation
// state, suitable for computing a Report without blocking Record.
type Snapshot struct {
	Histogram       [HistogramBins]uint64
	TotalOperations uint64
	TotalCycles     uint64
	PerKind         map[OpKind]KindSnapshot
}

// KindSnapshot is the per-OpKind subset of a Snapshot.
type KindSnapshot struct {
	Operations uint64
	Cycles     uint64
}

// addSat adds b to a, saturating at the uint64 max instead of
// wrapping, and reporting whether it saturated. Grounded on the
// teacher's utils/math.Add64 overflow-checked accumulator (this
// core is in-process and long-running, so saturation rather than an
// error return keeps the hot path branch-free).
func addSat(a, b uint64) (uint64, bool) {
	if a > maxUint64-b {
		return maxUint64, true
	}
	return a + b, false
}

const maxUint64 = ^uint64(0)
