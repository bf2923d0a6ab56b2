package shacl

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/metrics"
	"github.com/semcore/semcore/tick"
	"github.com/semcore/semcore/triple"
)

func setup(t *testing.T) (*intern.Interner, *triple.Graph, intern.StringRef) {
	t.Helper()
	in := intern.New()
	rdfType := in.Intern([]byte("rdf:type"), intern.FlagIRI, 0)
	return in, triple.NewGraph(), rdfType
}

func ref(t *testing.T, in *intern.Interner, s string) intern.StringRef {
	t.Helper()
	return in.Intern([]byte(s), intern.FlagIRI, 0)
}

// Scenario 1 (spec.md §8): exact SHACL cardinality.
func TestExactCardinalityViolation(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	name := ref(t, in, "ex:name")
	alice := ref(t, in, "ex:alice")

	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})

	v := New(in, rdfType, 128, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindMinCount, PropertyPath: name, Param: Param{Int: 1}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateGraph(graph, report)

	assert.False(t, report.Conforms)
	require.Len(t, report.Results, 1)
	assert.Equal(t, KindMinCount, report.Results[0].Kind)
	assert.Equal(t, 1, report.Counts.Violation)
}

// Scenario 2 (spec.md §8): NodeKind IRI.
func TestNodeKindIRI(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	knows := ref(t, in, "ex:knows")
	alice := ref(t, in, "ex:alice")
	bobLiteral := in.Intern([]byte("bob"), intern.FlagLiteral, 0)
	bobIRI := ref(t, in, "http://ex/bob")

	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})
	graph.Add(triple.Triple{Subject: alice, Predicate: knows, Object: bobLiteral, ObjectKind: triple.ObjectLiteral})

	v := New(in, rdfType, 128, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindNodeKind, PropertyPath: knows, Param: Param{NodeKind: NodeKindIRI}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateNode(graph, alice, report)
	assert.False(t, report.Conforms)

	graph2 := triple.NewGraph()
	graph2.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})
	graph2.Add(triple.Triple{Subject: alice, Predicate: knows, Object: bobIRI, ObjectKind: triple.ObjectIRI})
	report2 := newReport()
	v.ValidateNode(graph2, alice, report2)
	assert.True(t, report2.Conforms)
}

// A value-shape constraint (NodeKind, here) conforms vacuously when
// the property has no values at all — absence is MinCount's job, not
// a value-shape constraint's.
func TestNodeKindConformsWhenPropertyAbsent(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	knows := ref(t, in, "ex:knows")
	alice := ref(t, in, "ex:alice")

	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})

	v := New(in, rdfType, 128, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindNodeKind, PropertyPath: knows, Param: Param{NodeKind: NodeKindIRI}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateNode(graph, alice, report)
	assert.True(t, report.Conforms)
}

func TestLoadShapeDuplicateAndCapacity(t *testing.T) {
	in, _, rdfType := setup(t)
	v := New(in, rdfType, 2, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:A")
	_, err := v.LoadShape(shapeIRI, ref(t, in, "ex:Class"))
	require.NoError(t, err)

	_, err = v.LoadShape(shapeIRI, ref(t, in, "ex:Class"))
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	_, err = v.LoadShape(ref(t, in, "ex:B"), ref(t, in, "ex:Class"))
	require.NoError(t, err)
	_, err = v.LoadShape(ref(t, in, "ex:C"), ref(t, in, "ex:Class"))
	assert.ErrorIs(t, err, errs.ErrCapacity)
}

func TestLoadShapesAggregatesFailures(t *testing.T) {
	in, _, rdfType := setup(t)
	v := New(in, rdfType, 2, 0, 0, nil, nil)
	class := ref(t, in, "ex:Class")
	a := ref(t, in, "ex:A")

	loaded, err := v.LoadShapes([]ShapeSpec{
		{IRI: a, TargetClass: class},
		{IRI: a, TargetClass: class},          // duplicate
		{IRI: ref(t, in, "ex:B"), TargetClass: class},
		{IRI: ref(t, in, "ex:C"), TargetClass: class}, // table full at capacity 2
	})

	require.Len(t, loaded, 2, "the two shapes that fit should still load")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
	assert.ErrorIs(t, err, errs.ErrCapacity)
}

func TestAddConstraintCapacityPerShape(t *testing.T) {
	in, _, rdfType := setup(t)
	v := New(in, rdfType, 4, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:A")
	_, err := v.LoadShape(shapeIRI, ref(t, in, "ex:Class"))
	require.NoError(t, err)

	for i := 0; i < MaxConstraintsPerShape; i++ {
		require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{Kind: KindMinCount, Param: Param{Int: 0}}))
	}
	err = v.AddConstraint(shapeIRI, &Constraint{Kind: KindMinCount})
	assert.Error(t, err)
}

func TestEvalConstraintUpdatesEffectivenessAndInstrumentation(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	name := ref(t, in, "ex:name")
	alice := ref(t, in, "ex:alice")
	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person})

	instr := tick.New(tick.NewCountingClock())
	v := New(in, rdfType, 128, 0, 0, instr, nil)
	c := &Constraint{Kind: KindMinCount, PropertyPath: name, Param: Param{Int: 1}, Severity: SeverityViolation}

	conforms, _ := v.EvalConstraint(graph, alice, c)
	assert.False(t, conforms)
	assert.Equal(t, uint64(1), c.Metrics.Evaluations)
	assert.Equal(t, uint64(1), c.Metrics.Violations)
	assert.InDelta(t, 0.1, c.Metrics.EWMAEffectiveness, 1e-9)

	snap := instr.Snapshot()
	assert.Equal(t, uint64(1), snap.TotalOperations)
}

func TestMaintainFindsLowEffectivenessConstraints(t *testing.T) {
	in, _, rdfType := setup(t)
	v := New(in, rdfType, 128, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:A")
	_, err := v.LoadShape(shapeIRI, ref(t, in, "ex:Class"))
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{Kind: KindMinCount, Param: Param{Int: 0}}))

	shape, _ := v.shapes.get(shapeIRI)
	shape.Constraints[0].Metrics.Evaluations = 10
	shape.Constraints[0].Metrics.EWMAEffectiveness = 0.05

	candidates := v.Maintain(0)
	require.Len(t, candidates, 1)
	assert.Equal(t, KindMinCount, candidates[0].ConstraintKind)
}

// A validate_node call measures its own elapsed cycles and adds them
// to the report, instead of leaving ValidationCycles at zero forever.
func TestValidateNodeAccumulatesValidationCycles(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	name := ref(t, in, "ex:name")
	alice := ref(t, in, "ex:alice")
	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})

	instr := tick.New(tick.NewCountingClock())
	v := New(in, rdfType, 128, 0, 0, instr, nil)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindMinCount, PropertyPath: name, Param: Param{Int: 1}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateNode(graph, alice, report)
	assert.Greater(t, report.ValidationCycles, uint64(0))
}

// validate_node and its recorded violations update the registered
// validations_total/violations_total counters directly, rather than
// leaving them at zero forever.
func TestValidateNodeIncrementsRegisteredMetrics(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	name := ref(t, in, "ex:name")
	alice := ref(t, in, "ex:alice")
	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person, ObjectKind: triple.ObjectIRI})

	reg := metrics.New(prometheus.NewRegistry())
	v := New(in, rdfType, 128, 0, 0, nil, reg)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindMinCount, PropertyPath: name, Param: Param{Int: 1}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateNode(graph, alice, report)

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.ValidationsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.ViolationsTotal.WithLabelValues("violation")))
}

func TestMemoryBoundViolation(t *testing.T) {
	in, graph, rdfType := setup(t)
	person := ref(t, in, "ex:Person")
	bio := ref(t, in, "ex:bio")
	alice := ref(t, in, "ex:alice")
	longText := in.Intern(make([]byte, 64), intern.FlagLiteral, 0)

	graph.Add(triple.Triple{Subject: alice, Predicate: rdfType, Object: person})
	graph.Add(triple.Triple{Subject: alice, Predicate: bio, Object: longText, ObjectKind: triple.ObjectLiteral})

	v := New(in, rdfType, 128, 0, 0, nil, nil)
	shapeIRI := ref(t, in, "ex:PersonShape")
	_, err := v.LoadShape(shapeIRI, person)
	require.NoError(t, err)
	require.NoError(t, v.AddConstraint(shapeIRI, &Constraint{
		Kind: KindMemoryBound, PropertyPath: bio, Param: Param{MemoryLimit: 8}, Severity: SeverityViolation,
	}))

	report := newReport()
	v.ValidateNode(graph, alice, report)
	assert.False(t, report.Conforms)
	assert.Equal(t, 1, report.Counts.MemoryViolation)
}
