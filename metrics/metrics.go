// Package metrics wraps a prometheus registry for the core's
// cross-cutting observability surface: tick gatekeeper stats,
// mailbox depths, supervisor restarts, discovery confidence.
// Grounded on the teacher's utils/metric.Registry (Counter/Gauge/
// Averager wrapper pattern) and metrics.Metrics (thin
// prometheus.Registerer wrapper).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "semcore"

// Registry bundles every metric the core exports. One Registry is
// created per scheduler instance.
type Registry struct {
	reg prometheus.Registerer

	TickMeanCycles      prometheus.Gauge
	TickSigmaLevel      prometheus.Gauge
	TickCpk             prometheus.Gauge
	TickDPM             prometheus.Gauge
	TickThroughputMOPS  prometheus.Gauge
	BudgetFaultsTotal   *prometheus.CounterVec

	MailboxDepth   *prometheus.GaugeVec
	MailboxDropped *prometheus.CounterVec
	DeadLetters    prometheus.Counter

	SupervisorRestartsTotal  *prometheus.CounterVec
	SupervisorFailuresTotal  *prometheus.CounterVec

	DiscoveryConfidence  prometheus.Histogram
	SignaturesPromoted   prometheus.Counter

	ValidationsTotal    prometheus.Counter
	ViolationsTotal     *prometheus.CounterVec
}

// New constructs and registers every metric against reg. Passing
// prometheus.NewRegistry() in tests keeps collectors from leaking
// across test cases; passing prometheus.DefaultRegisterer wires into
// the process-global /metrics endpoint in production.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		reg: reg,
		TickMeanCycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tick", Name: "mean_cycles",
			Help: "Mean elapsed cycles per hot-path operation.",
		}),
		TickSigmaLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tick", Name: "sigma_level",
			Help: "Sigma level of the cycle distribution against the 7-cycle target.",
		}),
		TickCpk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tick", Name: "cpk",
			Help: "Process capability index against the cycle target.",
		}),
		TickDPM: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tick", Name: "dpm",
			Help: "Defects per million operations, derived from the sigma level.",
		}),
		TickThroughputMOPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tick", Name: "throughput_mops",
			Help: "Millions of operations per second, treating one cycle as one nanosecond.",
		}),
		BudgetFaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tick", Name: "budget_faults_total",
			Help: "Operations that exceeded their configured cycle budget, by op kind.",
		}, []string{"op_kind"}),

		MailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "mailbox", Name: "depth",
			Help: "Current queued message count per mailbox ring.",
		}, []string{"mailbox_id", "priority"}),
		MailboxDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mailbox", Name: "dropped_total",
			Help: "Messages dropped on enqueue because the ring was full.",
		}, []string{"mailbox_id", "priority"}),
		DeadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mailbox", Name: "dead_letters_total",
			Help: "Messages pushed to the dead-letter ring after exhausting retries.",
		}),

		SupervisorRestartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "supervisor", Name: "restarts_total",
			Help: "Actor restarts attempted, by strategy.",
		}, []string{"strategy"}),
		SupervisorFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "supervisor", Name: "failures_total",
			Help: "Actor failures reported, by reason.",
		}, []string{"reason"}),

		DiscoveryConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "discovery", Name: "candidate_confidence",
			Help:    "Confidence score of each discovery candidate at promotion time.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		SignaturesPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "discovery", Name: "signatures_promoted_total",
			Help: "Candidates promoted to durable signatures.",
		}),

		ValidationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shacl", Name: "validations_total",
			Help: "Top-level validate_node calls.",
		}),
		ViolationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "shacl", Name: "violations_total",
			Help: "Constraint violations, by severity.",
		}, []string{"severity"}),
	}

	r.mustRegister(
		r.TickMeanCycles, r.TickSigmaLevel, r.TickCpk, r.TickDPM, r.TickThroughputMOPS,
		r.BudgetFaultsTotal,
		r.MailboxDepth, r.MailboxDropped, r.DeadLetters,
		r.SupervisorRestartsTotal, r.SupervisorFailuresTotal,
		r.DiscoveryConfidence, r.SignaturesPromoted,
		r.ValidationsTotal, r.ViolationsTotal,
	)
	return r
}

func (r *Registry) mustRegister(collectors ...prometheus.Collector) {
	for _, c := range collectors {
		r.reg.MustRegister(c)
	}
}
