package mailbox

import (
	"sync/atomic"

	"github.com/semcore/semcore/arena"
	"github.com/semcore/semcore/errs"
)

// ring is a single priority level's fixed-capacity SPSC queue
// (spec.md §4.8). head/tail are read with relaxed loads and written
// with release stores on the Go atomic types, the closest portable
// stand-in for the acquire/release pairing the spec describes —
// Go does not expose per-operation memory orders, so sequentially
// consistent atomics are used throughout and are strictly stronger
// than required.
type ring struct {
	slots []Message
	mask  uint64

	head atomic.Uint64
	tail atomic.Uint64

	enqueued atomic.Uint64
	dequeued atomic.Uint64
	dropped  atomic.Uint64
}

// newRing builds a ring of the given capacity, which must be a power
// of two (config.MailboxRingCapacities validates this). Slots are
// allocated from a, keeping the fixed-layout Message records
// arena-backed per C3/C9's pairing.
func newRing(a *arena.Arena, capacity int) (*ring, bool) {
	slots, ok := arena.AllocSlice[Message](a, capacity)
	if !ok {
		return nil, false
	}
	return &ring{slots: slots, mask: uint64(capacity - 1)}, true
}

// enqueue writes msg into the ring. Returns errs.ErrQueueFull if the
// ring has no free slot, incrementing dropped. enqueued counts every
// attempt, successful or not, so the ring invariant
// enqueued - dequeued - dropped == used holds at any instant.
func (r *ring) enqueue(msg Message) error {
	r.enqueued.Add(1)
	tail := r.tail.Load()
	next := (tail + 1) & r.mask
	head := r.head.Load()
	if next == head {
		r.dropped.Add(1)
		return errs.ErrQueueFull
	}
	stampChecksum(&msg)
	r.slots[tail] = msg
	r.tail.Store(next)
	return nil
}

// dequeue pops the oldest message, if any.
func (r *ring) dequeue() (Message, bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head == tail {
		return Message{}, false
	}
	msg := r.slots[head]
	r.head.Store((head + 1) & r.mask)
	r.dequeued.Add(1)
	return msg, true
}

// used returns the number of messages currently queued.
func (r *ring) used() int {
	tail := r.tail.Load()
	head := r.head.Load()
	return int((tail - head) & r.mask)
}

// capacity returns the ring's usable capacity (one slot is always
// reserved to distinguish full from empty).
func (r *ring) capacity() int {
	return len(r.slots) - 1
}
