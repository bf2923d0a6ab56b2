// Package scheduler implements the budget-enforced cycle driver
// (C11): it pulls pending triples, runs pattern classification,
// routes a message to the target actor's mailbox, collapses that
// actor's causal vector, escalates failed deliveries to supervision,
// and runs SHACL validation on every processed triple's subject and
// OWL reasoning every InferenceEvery processed triples. The cycle
// budget bounds how many triples a cycle takes; validation and
// reasoning are not skipped when it runs low. A low-frequency
// maintenance pass reports constraint-pruning candidates off the hot
// path (spec.md §4.10); it removes no constraint itself.
package scheduler

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/semcore/semcore/actor"
	"github.com/semcore/semcore/config"
	"github.com/semcore/semcore/discovery"
	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/mailbox"
	"github.com/semcore/semcore/metrics"
	"github.com/semcore/semcore/owl"
	"github.com/semcore/semcore/shacl"
	"github.com/semcore/semcore/supervisor"
	"github.com/semcore/semcore/telemetry"
	"github.com/semcore/semcore/tick"
	"github.com/semcore/semcore/triple"
)

// CycleReport summarizes one RunCycle call, the gatekeeper-style
// result spec.md §4.10 asks the scheduler to produce.
type CycleReport struct {
	TriplesProcessed int
	Events           []discovery.Event
	Validation       *shacl.Report
	Inferred         []triple.Triple
	InferenceTruncated bool
	RestartsTriggered  int
	MailboxDrops       int
	BudgetFaults       uint64
}

// Scheduler wires every other component into the single per-triple
// pipeline described in spec.md §4.10. One Scheduler owns exactly one
// arena, router, and actor substrate (single-owner per scheduler); the
// interner and validator may be shared across a Pool of replicas.
type Scheduler struct {
	mu sync.Mutex

	id uint64

	cfg   config.Config
	clock tick.Clock
	instr *tick.Instrumentation

	discovery *discovery.Engine
	validator *shacl.Validator
	reasoner  *owl.Reasoner
	router    *mailbox.Router
	substrate *actor.Substrate
	local     *supervisor.Supervisor
	registry  *supervisor.Registry

	metrics *metrics.Registry
	sink    telemetry.Sink
	log     *zap.Logger

	cycleBudgetCycles uint64
	inferenceEvery    int

	pending        []triple.Triple
	nextMessageID  uint64
	sinceInference int
	budgetFaults   uint64
}

// Deps bundles the collaborators a Scheduler is built from.
// Discovery, Router and Substrate are required; every other field may
// be left nil or zero (nil Registry disables escalation; nil Sink
// defaults to telemetry.NopSink{}; nil Instr and Clock make every
// reading 0; nil Validator, Reasoner, Local or Metrics skips
// validation, inference, supervision or metrics respectively).
type Deps struct {
	ID         uint64
	Cfg        config.Config
	Clock      tick.Clock
	Instr      *tick.Instrumentation
	Discovery  *discovery.Engine
	Validator  *shacl.Validator
	Reasoner   *owl.Reasoner
	Router     *mailbox.Router
	Substrate  *actor.Substrate
	Local      *supervisor.Supervisor
	Registry   *supervisor.Registry
	Metrics    *metrics.Registry
	Sink       telemetry.Sink
	// Log receives budget-fault warnings; nil defaults to zap.NewNop().
	Log *zap.Logger
	// InferenceEvery is how many processed triples elapse between
	// opportunistic OWL reasoning passes; zero disables it.
	InferenceEvery int
}

// New builds a Scheduler. The per-cycle budget is
// cfg.TargetCyclesPerOp scaled across the operations a single triple
// touches (discovery, routing, collapse, validation) so a batch can
// grow until that allotment is spent.
func New(d Deps) *Scheduler {
	sink := d.Sink
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		id:                d.ID,
		cfg:               d.Cfg,
		clock:             d.Clock,
		instr:             d.Instr,
		discovery:         d.Discovery,
		validator:         d.Validator,
		reasoner:          d.Reasoner,
		router:            d.Router,
		substrate:         d.Substrate,
		local:             d.Local,
		registry:          d.Registry,
		metrics:           d.Metrics,
		sink:              sink,
		log:               log,
		cycleBudgetCycles: uint64(d.Cfg.TargetCyclesPerOp) * 4,
		inferenceEvery:    d.InferenceEvery,
	}
}

// Submit enqueues t for the next RunCycle call. Returns
// errs.ErrCapacity once the pending queue reaches MaxCandidates
// (reusing the same bound discovery's candidate buffer enforces,
// since an unprocessed backlog is the same kind of bounded resource).
func (s *Scheduler) Submit(t triple.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) >= s.cfg.MaxCandidates {
		return errs.ErrCapacity
	}
	s.pending = append(s.pending, t)
	return nil
}

// Pending returns the number of triples queued but not yet processed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RunCycle drains the pending queue into graph, one triple at a time,
// until either the queue empties or the configured cycle budget is
// spent — "a batch up to the remaining budget" (spec.md §4.10). Every
// sub-operation is tick-instrumented; overruns are recorded as budget
// faults and never interrupt in-flight work.
func (s *Scheduler) RunCycle(graph *triple.Graph, now uint64) (CycleReport, error) {
	cycleStart := s.now()

	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	report := &shacl.Report{Conforms: true}
	out := CycleReport{Validation: report}

	spent := uint64(0)
	var i int
	for i = 0; i < len(batch) && spent < s.cycleBudgetCycles; i++ {
		t := batch[i]
		start := s.now()

		event, restarted, dropped := s.processTriple(graph, t, now, report)
		out.Events = append(out.Events, event)
		out.RestartsTriggered += restarted
		if dropped {
			out.MailboxDrops++
		}

		end := s.now()
		spent += end - start
		s.recordOp(tick.OpSchedulerCycle, start, end)
	}
	out.TriplesProcessed = i

	if i < len(batch) {
		s.mu.Lock()
		s.pending = append(batch[i:], s.pending...)
		s.mu.Unlock()
	}

	if s.reasoner != nil && s.inferenceEvery > 0 {
		s.sinceInference += out.TriplesProcessed
		if s.sinceInference >= s.inferenceEvery {
			s.sinceInference = 0
			derived, truncated := s.reasoner.Infer(graph)
			for _, d := range derived {
				graph.Add(d)
			}
			out.Inferred = derived
			out.InferenceTruncated = truncated
		}
	}

	cycleEnd := s.now()
	s.recordOp(tick.OpSchedulerCycle, cycleStart, cycleEnd)
	out.BudgetFaults = s.budgetFaultCount()

	s.reportTickGauges()
	s.emitValidation(report)

	return out, nil
}

// reportTickGauges derives a tick.Report from the instrumentation
// snapshot and publishes it to the five tick gauges. Cheap relative to
// a cycle (one histogram walk), so it runs at the end of every
// RunCycle rather than only on the low-frequency maintenance pass.
func (s *Scheduler) reportTickGauges() {
	if s.instr == nil || s.metrics == nil {
		return
	}
	r := tick.Compute(s.instr.Snapshot())
	s.metrics.TickMeanCycles.Set(r.Mean)
	s.metrics.TickSigmaLevel.Set(r.SigmaLevel)
	s.metrics.TickCpk.Set(r.Cpk)
	s.metrics.TickDPM.Set(r.DPM)
	s.metrics.TickThroughputMOPS.Set(r.ThroughputMOPS)
}

// emitValidation publishes the cycle's accumulated SHACL report to the
// telemetry sink (spec.md §6: "For each validation: a validation
// report").
func (s *Scheduler) emitValidation(report *shacl.Report) {
	if s.sink == nil || report == nil {
		return
	}
	s.sink.Validation(telemetry.ValidationEvent{
		Conforms: report.Conforms,
		Counts: telemetry.ValidationCounts{
			Info:            report.Counts.Info,
			Warning:         report.Counts.Warning,
			Violation:       report.Counts.Violation,
			MemoryViolation: report.Counts.MemoryViolation,
		},
		NodesValidated:     report.NodesValidated,
		ConstraintsChecked: report.ConstraintsChecked,
		ValidationCycles:   report.ValidationCycles,
		PeakMemory:         report.PeakMemory,
	})
}

// processTriple runs one triple through discovery, routing, L1
// collapse, and, when a validator is configured, validation of the
// triple's subject, whatever budget remains. Every
// sub-operation's failure is recorded as a budget fault or telemetry
// event, never returned as a hot-path error (spec.md §4.10's failure-
// semantics paragraph: "no component throws on a hot path").
func (s *Scheduler) processTriple(graph *triple.Graph, t triple.Triple, now uint64, report *shacl.Report) (event discovery.Event, restarts int, dropped bool) {
	graph.Add(t)

	var err error
	event, err = s.discovery.Observe(t, now, s.validator)
	if err != nil {
		// Promotion can fail (duplicate shape, capacity, oversized
		// signature); discovery itself still observed the triple, so
		// this is recorded, never a hot-path abort.
		s.noteBudgetFault("discovery.promote")
	}
	s.emitDiscovery(event)

	actorID := actorIDFor(t)
	if _, ok := s.substrate.Get(actorID); !ok {
		if _, regErr := s.substrate.Register(actorID, s.id); regErr != nil {
			// Substrate full or a concurrent registration won the
			// race; the actor simply isn't collapsed this cycle.
			s.noteBudgetFault("actor.register")
			return event, 0, false
		}
	}

	restarts, dropped = s.route(actorID, t, now)

	if colErr := s.substrate.Collapse(actorID); colErr != nil {
		s.noteBudgetFault(string(tick.OpActorCollapse))
	}

	if s.validator != nil {
		s.validator.ValidateNode(graph, t.Subject, report)
	}

	return event, restarts, dropped
}

// route builds a message for t, targeted at actorID's mailbox, and
// sends it. A terminal delivery failure (message exhausted its
// retries into the dead-letter ring) is reported to the local
// supervisor as an actor failure, which may trigger a restart.
func (s *Scheduler) route(actorID uint64, t triple.Triple, now uint64) (restarts int, dropped bool) {
	var payload [mailbox.MaxPayloadBytes]byte
	size := encodeTriple(t, &payload)

	s.mu.Lock()
	s.nextMessageID++
	msgID := s.nextMessageID
	s.mu.Unlock()

	msg := mailbox.Message{
		MessageID:   msgID,
		Source:      s.id,
		Target:      actorID,
		Kind:        mailbox.KindTell,
		Priority:    2,
		MaxAttempts: 3,
		TimestampNs: now,
		PayloadSize: size,
		Payload:     payload,
	}

	mb := s.router.MailboxFor(actorID)

	var err error
	for {
		start := s.now()
		err = s.router.Send(msg)
		s.recordOp(tick.OpMailboxEnqueue, start, s.now())

		if err == nil || !errs.Is(err, errs.ErrQueueFull) {
			break
		}
		msg.Attempts++
		if msg.Attempts >= msg.MaxAttempts {
			// Mailbox.Enqueue already routed this attempt to the
			// dead-letter ring; stop retrying.
			break
		}
	}

	if s.metrics != nil {
		enqueued, dequeued, msgDropped := mb.Stats(msg.Priority)
		s.metrics.MailboxDepth.WithLabelValues(
			strconv.FormatUint(mb.ID, 10), strconv.Itoa(int(msg.Priority)),
		).Set(float64(enqueued - dequeued - msgDropped))
	}

	if err == nil {
		return 0, false
	}
	if !errs.Is(err, errs.ErrQueueFull) {
		return 0, false
	}
	dropped = true
	if s.metrics != nil {
		s.metrics.MailboxDropped.WithLabelValues(strconv.FormatUint(mb.ID, 10), strconv.Itoa(int(msg.Priority))).Inc()
	}

	// The retry loop above only stops on success or on msg.Attempts
	// reaching MaxAttempts, so reaching here means this message was
	// just dead-lettered — a terminal delivery failure.
	if s.metrics != nil {
		s.metrics.DeadLetters.Inc()
	}
	if s.local == nil {
		return 0, dropped
	}
	if _, ok := s.local.Get(actorID); !ok {
		return 0, dropped
	}
	result, failErr := s.local.ReportFailure(s.substrate, s.registry, actorID, 1, now)
	s.emitSupervision(actorID, result, failErr)
	if result != nil {
		restarts = len(result.Restarted)
	}
	return restarts, dropped
}

// Maintain runs the low-frequency maintenance pass: frequency
// adaptation is already incremental inside discovery, so this pass
// returns the constraints whose effectiveness EWMA has decayed below
// pruneThreshold. It removes none of them. Never called from the hot
// per-triple path.
func (s *Scheduler) Maintain(pruneThreshold float64) []shacl.PruneCandidate {
	if s.discovery == nil || s.validator == nil {
		return nil
	}
	return s.discovery.Maintain(s.validator, pruneThreshold)
}

func (s *Scheduler) now() uint64 {
	if s.instr != nil {
		return s.instr.Now()
	}
	if s.clock != nil {
		return s.clock.Now()
	}
	return 0
}

func (s *Scheduler) recordOp(kind tick.OpKind, start, end uint64) {
	if s.instr != nil {
		s.instr.Record(kind, start, end)
	}
	exceeded := s.cfg.TargetCyclesPerOp > 0 && end-start > uint64(s.cfg.TargetCyclesPerOp)
	if exceeded {
		s.noteBudgetFault(string(kind))
	}
	if s.sink != nil {
		s.sink.Operation(telemetry.OperationEvent{
			OpKind:         kind,
			StartCycle:     start,
			EndCycle:       end,
			ElapsedCycles:  end - start,
			BudgetExceeded: exceeded,
		})
	}
}

// noteBudgetFault records a budget fault labeled by opKind: an
// overrun of the configured cycle target, or a failed hot-path
// sub-operation (promotion, actor registration, collapse). Recorded,
// never thrown (spec.md §4.10).
func (s *Scheduler) noteBudgetFault(opKind string) {
	s.mu.Lock()
	s.budgetFaults++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.BudgetFaultsTotal.WithLabelValues(opKind).Inc()
	}
	s.log.Warn("cycle budget exceeded", zap.String("op_kind", opKind), zap.Uint64("scheduler_id", s.id))
}

func (s *Scheduler) budgetFaultCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetFaults
}

func (s *Scheduler) emitDiscovery(e discovery.Event) {
	if s.sink == nil {
		return
	}
	name := ""
	observations := 0
	if e.Candidate != nil {
		name = e.Candidate.Name
		observations = e.Candidate.ObservationCount
	}
	s.sink.Discovery(telemetry.DiscoveryEvent{
		CandidateName:    name,
		Confidence:       candidateConfidence(e),
		Threshold:        e.Threshold,
		ObservationCount: observations,
		Promoted:         e.Promoted,
	})
	if s.metrics != nil && e.Promoted {
		s.metrics.SignaturesPromoted.Inc()
		s.metrics.DiscoveryConfidence.Observe(candidateConfidence(e))
	}
}

func candidateConfidence(e discovery.Event) float64 {
	if e.Candidate == nil {
		return 0
	}
	return e.Candidate.Confidence
}

func (s *Scheduler) emitSupervision(actorID uint64, result *supervisor.FailureResult, err error) {
	if s.sink == nil || s.local == nil {
		return
	}
	action := "restart"
	success := err == nil
	if result != nil && result.Refused {
		action = "refused"
	}
	s.sink.Supervision(telemetry.SupervisionEvent{
		ActorID:      actorID,
		SupervisorID: s.local.ID,
		Reason:       1,
		Strategy:     string(s.cfg.SupervisionStrategy),
		ActionTaken:  action,
		Success:      success,
	})
	if s.metrics != nil {
		if success && action == "restart" {
			s.metrics.SupervisorRestartsTotal.WithLabelValues(string(s.cfg.SupervisionStrategy)).Inc()
		} else {
			s.metrics.SupervisorFailuresTotal.WithLabelValues(action).Inc()
		}
	}
}
