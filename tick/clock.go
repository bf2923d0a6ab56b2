// Package tick implements the cycle-budget instrumentation (C1):
// reading a monotonic cycle counter, maintaining a 1000-bin histogram
// of per-operation cost, and deriving quality-gate statistics
// (sigma level, Cpk, DPM, throughput) off the hot path.
package tick

import (
	"sync/atomic"
	"time"
)

// OpKind labels the hot-path operation an elapsed-cycle sample belongs
// to, for per-kind reporting in the gatekeeper report and telemetry
// stream.
type OpKind string

const (
	OpInternLookup     OpKind = "intern.lookup"
	OpArenaAlloc       OpKind = "arena.alloc"
	OpShaclEval        OpKind = "shacl.eval_constraint"
	OpShaclValidate    OpKind = "shacl.validate_node"
	OpOwlInfer         OpKind = "owl.infer"
	OpDiscoveryClassify OpKind = "discovery.classify"
	OpActorCollapse    OpKind = "actor.collapse"
	OpMailboxEnqueue   OpKind = "mailbox.enqueue"
	OpMailboxDequeue   OpKind = "mailbox.dequeue"
	OpSupervisorDecide OpKind = "supervisor.decide"
	OpSchedulerCycle   OpKind = "scheduler.cycle"
)

// Clock yields a monotonic cycle count. The source's architecture-
// specific cycle-counter instructions are abstracted behind this
// interface; a platform without one falls back to a logical,
// monotonically incrementing counter so budgets become "logical
// cycles" without losing test coverage (spec.md §9).
type Clock interface {
	Now() uint64
}

// LogicalClock is the portable fallback Clock: it reads the runtime's
// monotonic clock reading (via time.Now(), which on every supported
// platform carries a monotonic component) and treats one nanosecond
// as one logical cycle, per spec.md §4.1's throughput formula. No
// architecture-specific instruction (RDTSC or equivalent) is used.
type LogicalClock struct{}

// NewLogicalClock returns a ready-to-use LogicalClock.
func NewLogicalClock() LogicalClock {
	return LogicalClock{}
}

// logicalEpoch anchors LogicalClock readings; time.Since against it
// uses the monotonic component, unlike UnixNano's wall-clock value.
var logicalEpoch = time.Now()

// Now returns the monotonic nanoseconds elapsed since logicalEpoch.
func (LogicalClock) Now() uint64 {
	return uint64(time.Since(logicalEpoch))
}

// CountingClock is a fully deterministic Clock for tests: each call to
// Now() returns the next value in a monotonically incrementing
// sequence, independent of wall-clock time.
type CountingClock struct {
	n atomic.Uint64
}

// NewCountingClock returns a ready-to-use CountingClock starting at zero.
func NewCountingClock() *CountingClock {
	return &CountingClock{}
}

// Now returns the next value in the monotonic sequence.
func (c *CountingClock) Now() uint64 {
	return c.n.Add(1)
}
