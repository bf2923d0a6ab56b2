package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OTelSink emits one span per operation event, annotated with the
// cycle budget fields, so a trace backend can correlate a hot-path
// operation with whatever request triggered it. Validation, discovery,
// and supervision events are recorded as span events on a
// process-lifetime span rather than full spans, since they are not
// scoped to a single caller's context.
type OTelSink struct {
	tracer trace.Tracer
	ctx    context.Context
	life   trace.Span
}

// NewOTelSink starts a process-lifetime span under name and returns a
// sink that derives per-operation spans and per-decision span events
// from it. Callers should call Close when the process is shutting
// down to end the lifetime span.
func NewOTelSink(tracer trace.Tracer, name string) *OTelSink {
	ctx, span := tracer.Start(context.Background(), name)
	return &OTelSink{tracer: tracer, ctx: ctx, life: span}
}

func (s *OTelSink) Operation(e OperationEvent) {
	_, span := s.tracer.Start(s.ctx, string(e.OpKind))
	span.SetAttributes(
		attribute.Int64("start_cycle", int64(e.StartCycle)),
		attribute.Int64("end_cycle", int64(e.EndCycle)),
		attribute.Int64("elapsed_cycles", int64(e.ElapsedCycles)),
		attribute.Bool("budget_exceeded", e.BudgetExceeded),
	)
	span.End()
}

func (s *OTelSink) Validation(e ValidationEvent) {
	s.life.AddEvent("validation", trace.WithAttributes(
		attribute.Bool("conforms", e.Conforms),
		attribute.Int("nodes_validated", e.NodesValidated),
		attribute.Int("constraints_checked", e.ConstraintsChecked),
		attribute.Int("violations", e.Counts.Violation),
	))
}

func (s *OTelSink) Discovery(e DiscoveryEvent) {
	s.life.AddEvent("discovery", trace.WithAttributes(
		attribute.String("candidate_name", e.CandidateName),
		attribute.Float64("confidence", e.Confidence),
		attribute.Bool("promoted", e.Promoted),
	))
}

func (s *OTelSink) Supervision(e SupervisionEvent) {
	s.life.AddEvent("supervision", trace.WithAttributes(
		attribute.Int64("actor_id", int64(e.ActorID)),
		attribute.String("strategy", e.Strategy),
		attribute.String("action_taken", e.ActionTaken),
		attribute.Bool("success", e.Success),
	))
}

// Close ends the process-lifetime span.
func (s *OTelSink) Close() {
	s.life.End()
}
