// Package actor implements the L1 causal bit-actor substrate (C8):
// an 8-bit actor matrix where the only hot-path operation is
// collapse, a fully unrolled XOR against a precomputed 256×8 hop
// table (spec.md §4.7).
package actor

import (
	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/tick"
)

// FlagCollapsePending marks bit 6 of Actor.Flags, set on every
// completed collapse. It is a status flag distinct from the causal
// vector itself — the vector only ever keeps bits 3 and 7 of each
// byte (collapseMask), which never includes bit 6.
const FlagCollapsePending uint8 = 1 << 6

// Actor is the per-actor causal state (spec.md §4.7 "State").
type Actor struct {
	ID           uint64
	SupervisorID uint64
	Bits         uint8
	CausalVector uint64
	Flags        uint8
	TickCount    uint64
}

// Reset clears transient per-actor state, preserving ID and
// SupervisorID — the two fields a supervisor restart must not touch
// (spec.md §4.9: "Restart preserves id and supervisor_id").
func (a *Actor) Reset() {
	a.Bits = 0
	a.CausalVector = 0
	a.Flags = 0
	a.TickCount = 0
}

// Collapse computes v = causal_vector XOR hop[bits][0..7] fully
// unrolled, masks the result with 0x88…88, writes it back, sets
// FlagCollapsePending, and increments the tick counter. Returns
// errs.ErrBudgetExceeded if the measured elapsed cycles exceed
// budgetCycles — state has already been updated by that point, since
// a budget fault is recorded, never a cancellation (spec.md §4.10).
func Collapse(a *Actor, instr *tick.Instrumentation, budgetCycles uint64) error {
	var start uint64
	if instr != nil {
		start = instr.Now()
	}

	h := &hopTable[a.Bits]
	v := a.CausalVector
	v ^= h[0]
	v ^= h[1]
	v ^= h[2]
	v ^= h[3]
	v ^= h[4]
	v ^= h[5]
	v ^= h[6]
	v ^= h[7]

	a.CausalVector = v & collapseMask
	a.Flags |= FlagCollapsePending
	a.TickCount++

	if instr == nil {
		return nil
	}
	end := instr.Now()
	instr.Record(tick.OpActorCollapse, start, end)
	if budgetCycles > 0 && end-start > budgetCycles {
		return errs.ErrBudgetExceeded
	}
	return nil
}
