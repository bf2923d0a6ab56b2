// Package telemetry implements the produced side of the telemetry
// interface (spec.md §6): per-operation cycle events, validation
// reports, discovery events, and supervision decisions, handed to an
// external collaborator. The core never depends on how that
// collaborator stores or displays them.
package telemetry

import "github.com/semcore/semcore/tick"

// OperationEvent is emitted for each completed hot-path operation.
type OperationEvent struct {
	OpKind         tick.OpKind `json:"op_kind"`
	StartCycle     uint64      `json:"start_cycle"`
	EndCycle       uint64      `json:"end_cycle"`
	ElapsedCycles  uint64      `json:"elapsed_cycles"`
	BudgetExceeded bool        `json:"budget_exceeded"`
}

// ValidationCounts mirrors the per-severity counts in a SHACL report.
type ValidationCounts struct {
	Info             int `json:"info"`
	Warning          int `json:"warning"`
	Violation        int `json:"violation"`
	MemoryViolation  int `json:"memory_violation"`
}

// ValidationEvent is emitted for each completed top-level validation
// call.
type ValidationEvent struct {
	Conforms           bool             `json:"conforms"`
	Counts             ValidationCounts `json:"counts"`
	NodesValidated     int              `json:"nodes_validated"`
	ConstraintsChecked int              `json:"constraints_checked"`
	ValidationCycles   uint64           `json:"validation_cycles"`
	PeakMemory         int64            `json:"peak_memory"`
}

// DiscoveryEvent is emitted for each discovery decision: a candidate
// observed, scored, and either retained, evicted, or promoted.
type DiscoveryEvent struct {
	CandidateName   string  `json:"candidate_name"`
	Confidence      float64 `json:"confidence"`
	Threshold       float64 `json:"threshold"`
	ObservationCount int    `json:"observation_count"`
	Promoted        bool    `json:"promoted"`
}

// SupervisionEvent is emitted for each supervision decision.
type SupervisionEvent struct {
	ActorID      uint64 `json:"actor_id"`
	SupervisorID uint64 `json:"supervisor_id"`
	Reason       int    `json:"reason"`
	Strategy     string `json:"strategy"`
	ActionTaken  string `json:"action_taken"`
	Success      bool   `json:"success"`
}
