// Package shacl implements the compiled constraint validator (§4.4):
// shapes compile down to a flat, kind-dispatched evaluator table, and
// each constraint tracks its own effectiveness so a maintenance pass
// can prune or relax it without touching the hot validation path.
package shacl

import (
	"fmt"
	"sync"

	humanize "github.com/dustin/go-humanize"

	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/metrics"
	"github.com/semcore/semcore/tick"
	"github.com/semcore/semcore/triple"
)

// ShapeTableCapacity and MaxMemoryPerNode/Graph are validated by
// config.Config; the Validator just trusts its constructor arguments.

// Validator compiles a shape graph into the dispatch table described
// in §4.4 and evaluates triples/focus nodes against it.
type Validator struct {
	mu sync.Mutex

	interner *intern.Interner
	rdfType  intern.StringRef
	instr    *tick.Instrumentation
	metrics  *metrics.Registry

	shapes *shapeTable
	order  []*Shape

	maxMemPerNode  int64
	maxMemPerGraph int64
}

// New creates a validator. rdfType must be the interned reference for
// `rdf:type`, resolved once by the caller so evaluators never intern
// on the hot path. instr may be nil to disable tick accounting; reg
// may be nil to disable the validations_total/violations_total
// counters.
func New(interner *intern.Interner, rdfType intern.StringRef, shapeTableCapacity int, maxMemPerNode, maxMemPerGraph int64, instr *tick.Instrumentation, reg *metrics.Registry) *Validator {
	return &Validator{
		interner:       interner,
		rdfType:        rdfType,
		instr:          instr,
		metrics:        reg,
		shapes:         newShapeTable(shapeTableCapacity),
		maxMemPerNode:  maxMemPerNode,
		maxMemPerGraph: maxMemPerGraph,
	}
}

// LoadShape registers a new, empty, active shape under iri. Returns
// errs.ErrDuplicate if iri is already loaded, errs.ErrCapacity if the
// shape table is full.
func (v *Validator) LoadShape(iri, targetClass intern.StringRef) (*Shape, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	shape := &Shape{IRI: iri, TargetClass: targetClass, Active: true}
	duplicate, full := v.shapes.insert(iri, shape)
	if duplicate {
		return nil, errs.ErrDuplicate
	}
	if full {
		return nil, errs.ErrCapacity
	}
	v.order = append(v.order, shape)
	return shape, nil
}

// ShapeSpec is one shape to register via LoadShapes.
type ShapeSpec struct {
	IRI         intern.StringRef
	TargetClass intern.StringRef
}

// LoadShapes registers every spec, continuing past individual
// failures (duplicate IRI, a full shape table) rather than aborting
// the whole batch on the first one — a shape graph compiled from a
// file commonly names the same IRI twice or exceeds capacity partway
// through. The shapes that did load are returned alongside a combined
// error describing every one that didn't.
func (v *Validator) LoadShapes(specs []ShapeSpec) ([]*Shape, error) {
	var collector errs.Collector
	loaded := make([]*Shape, 0, len(specs))
	for _, spec := range specs {
		shape, err := v.LoadShape(spec.IRI, spec.TargetClass)
		if err != nil {
			collector.Add(fmt.Errorf("shape %d: %w", spec.IRI.Hash, err))
			continue
		}
		loaded = append(loaded, shape)
	}
	return loaded, collector.Err()
}

// AddConstraint appends a constraint to the shape registered under
// shapeIRI. Returns errs.ErrNotFound, errs.ErrCapacity (>16 per
// shape), or errs.ErrInvalidArgument (unknown kind).
func (v *Validator) AddConstraint(shapeIRI intern.StringRef, c *Constraint) error {
	if c.Kind >= numKinds {
		return errs.ErrInvalidArgument
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	shape, ok := v.shapes.get(shapeIRI)
	if !ok {
		return errs.ErrNotFound
	}
	if len(shape.Constraints) >= MaxConstraintsPerShape {
		return errs.ErrCapacity
	}
	shape.Constraints = append(shape.Constraints, c)
	return nil
}

// Deactivate marks a shape inactive; validate_node skips inactive
// shapes without removing them from the table.
func (v *Validator) Deactivate(shapeIRI intern.StringRef) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	shape, ok := v.shapes.get(shapeIRI)
	if !ok {
		return errs.ErrNotFound
	}
	shape.Active = false
	return nil
}

// ValidateGraph iterates every focus node that matches any loaded
// shape's target class and validates it, accumulating into report.
func (v *Validator) ValidateGraph(graph *triple.Graph, report *Report) {
	ctx := &evalContext{graph: graph, interner: v.interner, rdfType: v.rdfType}
	for _, focus := range graph.FocusNodes() {
		if v.nodeMatchesAnyTarget(ctx, focus) {
			v.validateNodeLocked(ctx, focus, report)
		}
	}
}

func (v *Validator) nodeMatchesAnyTarget(ctx *evalContext, focus intern.StringRef) bool {
	v.mu.Lock()
	order := v.order
	v.mu.Unlock()
	for _, shape := range order {
		if !shape.Active {
			continue
		}
		if ctx.graph.Has(focus, ctx.rdfType, shape.TargetClass) {
			return true
		}
	}
	return false
}

// ValidateNode validates node against every active shape whose target
// class it satisfies.
func (v *Validator) ValidateNode(graph *triple.Graph, node intern.StringRef, report *Report) {
	ctx := &evalContext{graph: graph, interner: v.interner, rdfType: v.rdfType}
	v.validateNodeLocked(ctx, node, report)
}

func (v *Validator) validateNodeLocked(ctx *evalContext, node intern.StringRef, report *Report) {
	var start uint64
	if v.instr != nil {
		start = v.instr.Now()
	}

	v.mu.Lock()
	order := append([]*Shape(nil), v.order...)
	v.mu.Unlock()

	report.NodesValidated++
	if v.metrics != nil {
		v.metrics.ValidationsTotal.Inc()
	}
	var nodeMemory int64
	for _, shape := range order {
		if !shape.Active {
			continue
		}
		if !ctx.graph.Has(node, ctx.rdfType, shape.TargetClass) {
			continue
		}
		mem := v.validateNodeShape(ctx, node, shape, report)
		nodeMemory += mem
		if v.maxMemPerNode > 0 && nodeMemory > v.maxMemPerNode {
			report.record(Result{
				FocusNode: node, ShapeIRI: shape.IRI, Kind: KindMemoryBound,
				Severity: SeverityViolation,
				Message: fmt.Sprintf("node memory footprint %s exceeds bound %s",
					humanize.Bytes(uint64(nodeMemory)), humanize.Bytes(uint64(v.maxMemPerNode))),
			})
			v.incViolation(SeverityViolation)
			break
		}
	}
	if report.PeakMemory < nodeMemory {
		report.PeakMemory = nodeMemory
	}

	if v.instr != nil {
		end := v.instr.Now()
		v.instr.Record(tick.OpShaclValidate, start, end)
		report.ValidationCycles += end - start
	}
}

func (v *Validator) incViolation(sev Severity) {
	if v.metrics == nil {
		return
	}
	v.metrics.ViolationsTotal.WithLabelValues(sev.String()).Inc()
}

// ValidateNodeShape evaluates every constraint of shape against node,
// in insertion order, recording the first violation per constraint.
func (v *Validator) ValidateNodeShape(graph *triple.Graph, node intern.StringRef, shape *Shape, report *Report) int64 {
	ctx := &evalContext{graph: graph, interner: v.interner, rdfType: v.rdfType}
	return v.validateNodeShape(ctx, node, shape, report)
}

func (v *Validator) validateNodeShape(ctx *evalContext, node intern.StringRef, shape *Shape, report *Report) int64 {
	var memory int64
	for _, c := range shape.Constraints {
		conforms, mem := v.evalConstraint(ctx, node, c)
		memory += mem
		report.ConstraintsChecked++
		if !conforms {
			report.record(Result{
				FocusNode: node, ShapeIRI: shape.IRI, Kind: c.Kind,
				Severity: c.Severity,
				Message:  fmt.Sprintf("%s constraint failed on property path", c.Kind),
			})
			v.incViolation(c.Severity)
		}
	}
	return memory
}

// EvalConstraint evaluates a single constraint against node, returning
// whether it conforms and the memory footprint it contributed. Starts
// a tick-instrumented region when instr is configured.
func (v *Validator) EvalConstraint(graph *triple.Graph, focus intern.StringRef, c *Constraint) (bool, int64) {
	ctx := &evalContext{graph: graph, interner: v.interner, rdfType: v.rdfType}
	return v.evalConstraint(ctx, focus, c)
}

func (v *Validator) evalConstraint(ctx *evalContext, focus intern.StringRef, c *Constraint) (conforms bool, memFootprint int64) {
	var start uint64
	if v.instr != nil {
		start = v.instr.Now()
	}

	conforms, memFootprint = v.dispatch(ctx, focus, c)

	c.Metrics.Evaluations++
	flag := 0.0
	if !conforms {
		c.Metrics.Violations++
		flag = 1.0
	}
	c.observeEffectiveness(flag)

	if v.instr != nil {
		v.instr.Record(tick.OpShaclEval, start, v.instr.Now())
	}
	return conforms, memFootprint
}

func (v *Validator) dispatch(ctx *evalContext, focus intern.StringRef, c *Constraint) (bool, int64) {
	switch c.Kind {
	case KindMinCount, KindMaxCount:
		return v.evalCardinality(ctx, focus, c)
	case KindMemoryBound:
		return v.evalMemoryBound(ctx, focus, c)
	default:
		evaluator, ok := valueEvaluators[c.Kind]
		if !ok {
			return false, 0
		}
		return v.evalPerValue(ctx, focus, c, evaluator)
	}
}

// evalPerValue checks every value of focus's propertyPath against
// evaluator. A property with no values at all conforms vacuously —
// absence is MinCount's concern, not a value-shape constraint's.
func (v *Validator) evalPerValue(ctx *evalContext, focus intern.StringRef, c *Constraint, evaluator valueEvaluator) (bool, int64) {
	values := ctx.graph.Values(focus, c.PropertyPath)
	var memory int64
	if len(values) == 0 {
		return true, 0
	}
	for _, t := range values {
		memory += int64(t.Object.Length)
		if !evaluator(ctx, t.Object, t.ObjectKind, c) {
			return false, memory
		}
	}
	return true, memory
}

func (v *Validator) evalCardinality(ctx *evalContext, focus intern.StringRef, c *Constraint) (bool, int64) {
	count := ctx.graph.Count(focus, c.PropertyPath)
	if c.Kind == KindMinCount {
		return int64(count) >= c.Param.Int, 0
	}
	return int64(count) <= c.Param.Int, 0
}

func (v *Validator) evalMemoryBound(ctx *evalContext, focus intern.StringRef, c *Constraint) (bool, int64) {
	values := ctx.graph.Values(focus, c.PropertyPath)
	var total int64
	for _, t := range values {
		total += int64(t.Object.Length)
	}
	return total <= c.Param.MemoryLimit, total
}
