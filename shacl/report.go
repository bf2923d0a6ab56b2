package shacl

import "github.com/semcore/semcore/intern"

// Result is one recorded constraint outcome. Only violations below
// the configured severity cutoff are costly to report; Info results
// are kept for completeness per spec since severity is a per-
// constraint property, not a filter.
type Result struct {
	FocusNode intern.StringRef
	ShapeIRI  intern.StringRef
	Kind      ConstraintKind
	Severity  Severity
	Message   string
}

// Counts tallies results by severity, plus the memory-bound violation
// subtotal called out separately in §3.
type Counts struct {
	Info            int
	Warning         int
	Violation       int
	MemoryViolation int
}

// Report is created per top-level validate_graph/validate_node call.
type Report struct {
	Conforms           bool
	Results            []Result
	Counts             Counts
	NodesValidated     int
	ConstraintsChecked int
	ValidationCycles   uint64
	PeakMemory         int64
}

func newReport() *Report {
	return &Report{Conforms: true}
}

func (r *Report) record(res Result) {
	r.Results = append(r.Results, res)
	switch res.Kind {
	case KindMemoryBound:
		r.Counts.MemoryViolation++
	}
	switch res.Severity {
	case SeverityInfo:
		r.Counts.Info++
	case SeverityWarning:
		r.Counts.Warning++
	case SeverityViolation:
		r.Counts.Violation++
		r.Conforms = false
	}
}
