// Package errs defines the closed error taxonomy shared by every
// component of the core. No component throws on a hot path; every
// public function returns one of these sentinels (or nil) as a plain
// value.
package errs

import "errors"

var (
	// ErrInvalidArgument marks null/zero/out-of-range inputs on a
	// public entry point.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks a referenced shape/actor/supervisor that does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks an attempt to re-register an already-known IRI.
	ErrDuplicate = errors.New("duplicate")
	// ErrCapacity marks a full shape table, constraint list, or
	// mailbox ring.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrQueueFull is returned by mailbox enqueue when the target
	// ring has no free slot; the producer's responsibility to retry
	// or drop.
	ErrQueueFull = errors.New("queue full")
	// ErrNoSupervisor marks an actor failure reported with no valid
	// supervisor linkage.
	ErrNoSupervisor = errors.New("no supervisor")
	// ErrNoResponse marks a bidirectional request that received no
	// matching reply within its TTL.
	ErrNoResponse = errors.New("no response")
	// ErrBudgetExceeded is recorded, never thrown, when an operation
	// exceeds its configured cycle target.
	ErrBudgetExceeded = errors.New("budget exceeded")
	// ErrMemoryBound marks a failed SHACL memory-bound constraint.
	ErrMemoryBound = errors.New("memory bound exceeded")
	// ErrCorruption marks a validator self-check (magic/arena/capacity
	// invariant) failure. The only condition that may abort scheduler
	// forward progress.
	ErrCorruption = errors.New("corruption")
)

// Is reports whether err wraps one of this package's sentinels.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
