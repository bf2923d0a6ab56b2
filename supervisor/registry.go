package supervisor

import (
	"sync"

	"github.com/semcore/semcore/errs"
)

// Registry holds every supervisor in a tree and resolves escalation
// by parent_id, per spec.md §4.9 ("failure escalates to parent
// supervisor, if any").
type Registry struct {
	mu          sync.Mutex
	supervisors map[uint64]*Supervisor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{supervisors: make(map[uint64]*Supervisor)}
}

// Add registers sv, returning errs.ErrDuplicate if its ID is already
// present.
func (r *Registry) Add(sv *Supervisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.supervisors[sv.ID]; ok {
		return errs.ErrDuplicate
	}
	r.supervisors[sv.ID] = sv
	return nil
}

// Get returns the supervisor registered under id, if any.
func (r *Registry) Get(id uint64) (*Supervisor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sv, ok := r.supervisors[id]
	return sv, ok
}

// Escalate records a failed recovery against sv's parent, recursing
// up the tree until it reaches a supervisor with no parent
// (ParentID == 0) or an unregistered parent.
func (r *Registry) Escalate(sv *Supervisor) {
	for {
		if sv.ParentID == 0 {
			return
		}
		parent, ok := r.Get(sv.ParentID)
		if !ok {
			return
		}
		parent.mu.Lock()
		parent.totalActorFailures++
		parent.failedRecoveries++
		parent.mu.Unlock()
		sv = parent
	}
}
