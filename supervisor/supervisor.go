package supervisor

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/semcore/semcore/actor"
	"github.com/semcore/semcore/config"
	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/tick"
)

// ManagedActor is the supervisor-side record for one actor under
// management: lifecycle state plus the rate-limiting bookkeeping
// needed by ReportFailure.
type ManagedActor struct {
	ID          uint64
	State       State
	ErrorCount  uint64
	RestartCount int
	LastRestart  uint64
}

// FailureResult summarizes the outcome of one ReportFailure call.
type FailureResult struct {
	Restarted []uint64
	Refused   bool
}

// Supervisor manages a fixed set of actors and decides how to react
// when one of them reports a failure, per spec.md §4.9.
type Supervisor struct {
	mu sync.Mutex

	ID       uint64
	ParentID uint64

	restartStrategy     config.RestartStrategy
	supervisionStrategy config.SupervisionStrategy
	maxRestartsPerWindow int
	restartWindowNs      uint64

	managed      map[uint64]*ManagedActor
	managedOrder []uint64

	totalActorFailures   uint64
	totalRestarts        uint64
	successfulRecoveries uint64
	failedRecoveries     uint64
	budgetFaults         uint64

	instr        *tick.Instrumentation
	budgetCycles uint64

	log *zap.Logger
}

// New builds a Supervisor from its configured strategies and budget.
// restartWindowNs and budgetCycles come from config.RestartWindow and
// config.L3BudgetCycles respectively; instr may be nil. log may be
// nil, in which case restart/refuse decisions are logged nowhere.
func New(id uint64, restartStrategy config.RestartStrategy, supervisionStrategy config.SupervisionStrategy, maxRestartsPerWindow int, restartWindowNs uint64, instr *tick.Instrumentation, budgetCycles uint64, log *zap.Logger) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{
		ID:                   id,
		restartStrategy:      restartStrategy,
		supervisionStrategy:  supervisionStrategy,
		maxRestartsPerWindow: maxRestartsPerWindow,
		restartWindowNs:      restartWindowNs,
		managed:              make(map[uint64]*ManagedActor),
		instr:                instr,
		budgetCycles:         budgetCycles,
		log:                  log,
	}
}

// Manage registers actorID under this supervisor, transitioning it
// Initializing → Running. Returns errs.ErrDuplicate if already managed.
func (s *Supervisor) Manage(actorID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.managed[actorID]; ok {
		return errs.ErrDuplicate
	}
	s.managed[actorID] = &ManagedActor{ID: actorID, State: Running}
	s.managedOrder = append(s.managedOrder, actorID)
	return nil
}

// ManagedIDs returns the ids this supervisor manages, in the order
// they were added — the order RestForOne relies on.
func (s *Supervisor) ManagedIDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.managedOrder))
	copy(out, s.managedOrder)
	return out
}

// Get returns the managed-actor record for id, if any.
func (s *Supervisor) Get(id uint64) (*ManagedActor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.managed[id]
	return a, ok
}

// Stats returns the supervisor's running totals, for telemetry/tests.
func (s *Supervisor) Stats() (totalFailures, totalRestarts, successful, failed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalActorFailures, s.totalRestarts, s.successfulRecoveries, s.failedRecoveries
}

// BudgetFaults returns the number of ReportFailure calls whose
// measured cycles exceeded the configured L3 budget — recorded, never
// thrown (spec.md §4.9's budget clause).
func (s *Supervisor) BudgetFaults() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetFaults
}

// ReportFailure implements the failure-handling algorithm of spec.md
// §4.9 steps 1–6. substrate supplies the per-actor Reset a restart
// performs; now is the current timestamp in nanoseconds (a
// tick.Clock reading). registry may be nil to disable escalation;
// otherwise a restart failure is recorded against this supervisor's
// parent, recursively. Returns errs.ErrNoSupervisor if actorID is not
// managed here.
func (s *Supervisor) ReportFailure(substrate *actor.Substrate, registry *Registry, actorID uint64, reason int, now uint64) (*FailureResult, error) {
	var start uint64
	if s.instr != nil {
		start = s.instr.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ma, ok := s.managed[actorID]
	if !ok {
		return nil, errs.ErrNoSupervisor
	}

	s.totalActorFailures++
	ma.ErrorCount++

	if !s.shouldRestart(reason) {
		s.recordDecision(start)
		return &FailureResult{}, nil
	}

	if now-ma.LastRestart < s.restartWindowNs {
		if ma.RestartCount >= s.maxRestartsPerWindow {
			s.failedRecoveries++
			s.recordDecision(start)
			s.log.Warn("restart refused: rate limit exceeded",
				zap.Uint64("supervisor_id", s.ID),
				zap.Uint64("actor_id", actorID),
				zap.Int("restart_count", ma.RestartCount))
			return &FailureResult{Refused: true}, nil
		}
	} else {
		ma.RestartCount = 0
	}

	targets := s.restartTargets(actorID)
	result := &FailureResult{}
	var aggErr error
	for _, id := range targets {
		target, ok := s.managed[id]
		if !ok {
			continue
		}
		target.State = Restarting
		if a, found := substrate.Get(id); found {
			a.Reset()
		} else {
			aggErr = multierr.Append(aggErr, errs.ErrNotFound)
			continue
		}
		target.State = Running
		target.RestartCount++
		target.LastRestart = now
		result.Restarted = append(result.Restarted, id)
	}
	s.totalRestarts += uint64(len(result.Restarted))

	if aggErr != nil {
		s.failedRecoveries++
		s.recordDecision(start)
		s.log.Error("restart failed",
			zap.Uint64("supervisor_id", s.ID),
			zap.Uint64("actor_id", actorID),
			zap.Error(aggErr))
		if registry != nil {
			registry.Escalate(s)
		}
		return result, aggErr
	}
	s.successfulRecoveries++
	s.recordDecision(start)
	s.log.Info("actor restarted",
		zap.Uint64("supervisor_id", s.ID),
		zap.Uint64("actor_id", actorID),
		zap.Uint64s("restarted", result.Restarted),
		zap.String("strategy", string(s.supervisionStrategy)))
	return result, nil
}

func (s *Supervisor) shouldRestart(reason int) bool {
	switch s.restartStrategy {
	case config.RestartPermanent:
		return true
	case config.RestartTemporary:
		return false
	case config.RestartTransient:
		return reason != 0
	default:
		return false
	}
}

// restartTargets computes which managed actors a failure of actorID
// restarts, per the configured supervision strategy.
func (s *Supervisor) restartTargets(actorID uint64) []uint64 {
	switch s.supervisionStrategy {
	case config.OneForAll:
		out := make([]uint64, len(s.managedOrder))
		copy(out, s.managedOrder)
		return out
	case config.RestForOne:
		idx := -1
		for i, id := range s.managedOrder {
			if id == actorID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return []uint64{actorID}
		}
		out := make([]uint64, len(s.managedOrder)-idx)
		copy(out, s.managedOrder[idx:])
		return out
	default: // OneForOne, SimpleOneForOne
		return []uint64{actorID}
	}
}

func (s *Supervisor) recordDecision(start uint64) {
	if s.instr == nil {
		return
	}
	end := s.instr.Now()
	s.instr.Record(tick.OpSupervisorDecide, start, end)
	if s.budgetCycles > 0 && end-start > s.budgetCycles {
		s.budgetFaults++
		s.log.Warn("supervisor decision exceeded budget",
			zap.Uint64("supervisor_id", s.ID),
			zap.Uint64("elapsed_cycles", end-start),
			zap.Uint64("budget_cycles", s.budgetCycles))
	}
}
