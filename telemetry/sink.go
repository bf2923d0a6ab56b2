package telemetry

// Sink is the produced side of the telemetry interface: the scheduler
// calls into it after completing an operation, a validation pass, a
// discovery decision, or a supervision action. The core ships three
// implementations (NopSink, BatchSink, OTelSink) plus the MultiSink
// fan-out, and expects
// production callers to supply their own (log shipper, trace
// collector, message bus) behind the same interface.
type Sink interface {
	Operation(OperationEvent)
	Validation(ValidationEvent)
	Discovery(DiscoveryEvent)
	Supervision(SupervisionEvent)
}

// NopSink discards every event. Useful as a default when telemetry
// export is not configured.
type NopSink struct{}

func (NopSink) Operation(OperationEvent)     {}
func (NopSink) Validation(ValidationEvent)   {}
func (NopSink) Discovery(DiscoveryEvent)     {}
func (NopSink) Supervision(SupervisionEvent) {}

// MultiSink fans a single event out to every wrapped sink, in order.
// Used to combine, e.g., a BatchSink with an OTelSink.
type MultiSink []Sink

func (m MultiSink) Operation(e OperationEvent) {
	for _, s := range m {
		s.Operation(e)
	}
}

func (m MultiSink) Validation(e ValidationEvent) {
	for _, s := range m {
		s.Validation(e)
	}
}

func (m MultiSink) Discovery(e DiscoveryEvent) {
	for _, s := range m {
		s.Discovery(e)
	}
}

func (m MultiSink) Supervision(e SupervisionEvent) {
	for _, s := range m {
		s.Supervision(e)
	}
}
