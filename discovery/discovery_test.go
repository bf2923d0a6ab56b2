package discovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/shacl"
	"github.com/semcore/semcore/triple"
)

func TestClassifyExactMatches(t *testing.T) {
	in := intern.New()
	vocab := Vocabulary{
		RDFType:    in.Intern([]byte("rdf:type"), intern.FlagIRI, 0),
		RDFSLabel:  in.Intern([]byte("rdfs:label"), intern.FlagIRI, 0),
		SubClassOf: in.Intern([]byte("rdfs:subClassOf"), intern.FlagIRI, 0),
	}
	c := NewClassifier(vocab, in)

	assert.Equal(t, TypeDecl, c.Classify(vocab.RDFType, false))
	assert.Equal(t, Label, c.Classify(vocab.RDFSLabel, true))
	assert.Equal(t, Hierarchy, c.Classify(vocab.SubClassOf, false))
}

func TestClassifyHeuristics(t *testing.T) {
	in := intern.New()
	c := NewClassifier(Vocabulary{}, in)

	hasName := in.Intern([]byte("ex:hasName"), intern.FlagIRI, 0)
	assert.Equal(t, Property, c.Classify(hasName, false))

	literalProp := in.Intern([]byte("ex:weight"), intern.FlagIRI, 0)
	assert.Equal(t, Property, c.Classify(literalProp, true))

	systemNS := in.Intern([]byte("owl:Thing"), intern.FlagIRI, 0)
	assert.Equal(t, Other, c.Classify(systemNS, false))

	other := in.Intern([]byte("ex:relatedTo"), intern.FlagIRI, 0)
	assert.Equal(t, Other, c.Classify(other, false))
}

func TestFrequencyModelAdaptsAfterPeriod(t *testing.T) {
	m := NewFrequencyModel(0.85, 0.05, 0.1)
	for i := 0; i < AdaptationPeriod-1; i++ {
		th := m.Observe(Other)
		assert.Equal(t, 0.85, th, "threshold unchanged before the adaptation period elapses")
	}
	th := m.Observe(Other)
	assert.LessOrEqual(t, th, 0.85)
	assert.GreaterOrEqual(t, th, 0.5)
}

// Scenario 5 (spec.md §8): pattern discovery promotion.
func TestDSPyPatternPromotion(t *testing.T) {
	in := intern.New()
	rdfType := in.Intern([]byte("rdf:type"), intern.FlagIRI, 0)
	hasQuestion := in.Intern([]byte("dspy:hasQuestion"), intern.FlagIRI, 0)
	hasAnswer := in.Intern([]byte("dspy:hasAnswer"), intern.FlagIRI, 0)

	q1 := in.Intern([]byte("ex:q1"), intern.FlagIRI, 0)
	q2 := in.Intern([]byte("ex:q2"), intern.FlagIRI, 0)
	q3 := in.Intern([]byte("ex:q3"), intern.FlagIRI, 0)

	what := in.Intern([]byte("What?"), intern.FlagLiteral, 0)
	why := in.Intern([]byte("Why?"), intern.FlagLiteral, 0)
	how := in.Intern([]byte("How?"), intern.FlagLiteral, 0)
	ans1 := in.Intern([]byte("answer one"), intern.FlagLiteral, 0)
	ans2 := in.Intern([]byte("answer two"), intern.FlagLiteral, 0)
	ans3 := in.Intern([]byte("answer three"), intern.FlagLiteral, 0)

	engine := NewEngine(Vocabulary{}, in, 256, 0.75, 0.05, 0.1, nil)
	validator := shacl.New(in, rdfType, 128, 0, 0, nil, nil)

	triples := []triple.Triple{
		{Subject: q1, Predicate: hasQuestion, Object: what, ObjectKind: triple.ObjectLiteral},
		{Subject: q1, Predicate: hasAnswer, Object: ans1, ObjectKind: triple.ObjectLiteral},
		{Subject: q2, Predicate: hasQuestion, Object: why, ObjectKind: triple.ObjectLiteral},
		{Subject: q2, Predicate: hasAnswer, Object: ans2, ObjectKind: triple.ObjectLiteral},
		{Subject: q3, Predicate: hasQuestion, Object: how, ObjectKind: triple.ObjectLiteral},
		{Subject: q3, Predicate: hasAnswer, Object: ans3, ObjectKind: triple.ObjectLiteral},
	}

	var last Event
	for i, tr := range triples {
		ev, err := engine.Observe(tr, uint64(i), validator)
		require.NoError(t, err)
		last = ev
	}

	require.NotNil(t, last.Candidate)
	assert.Equal(t, 3, last.Candidate.ObservationCount)
	assert.GreaterOrEqual(t, last.Candidate.Confidence, 0.75)
	assert.True(t, last.Promoted)
	require.NotNil(t, last.Signature)
	assert.Equal(t, 2, last.Signature.FieldCount)
	assert.Equal(t, "string", last.Signature.Fields[0].OWLDatatype)
	assert.Equal(t, "string", last.Signature.Fields[1].OWLDatatype)
	assert.Len(t, last.Signature.FieldHashes, 2)

	// The synthesized shape must actually be loaded in validator and
	// carry a MinCount + Datatype pair per field (§4.6); re-promoting
	// under the same shape IRI now fails as a duplicate.
	_, err := validator.LoadShape(last.Signature.ShapeIRI, last.Signature.ShapeIRI)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestInferLiteralDatatype(t *testing.T) {
	assert.Equal(t, "integer", InferLiteralDatatype([]byte("42")))
	assert.Equal(t, "decimal", InferLiteralDatatype([]byte("4.2")))
	assert.Equal(t, "boolean", InferLiteralDatatype([]byte("true")))
	assert.Equal(t, "dateTime", InferLiteralDatatype([]byte("2024-01-01T00:00:00")))
	assert.Equal(t, "string", InferLiteralDatatype([]byte("hello")))
}

func TestCandidateBufferEvictsMinConfidence(t *testing.T) {
	in := intern.New()
	d := NewDetector(in, 256)

	// The first MaxCandidates subjects do not end in a digit (subject-naming
	// score 0.5); the last five do (score 1.0), so each of those outscores
	// the buffer's minimum and must evict one of the weaker candidates.
	var strong []*Candidate
	for i := 0; i < MaxCandidates+5; i++ {
		name := fmt.Sprintf("ex:s%d_x", i)
		if i >= MaxCandidates {
			name = fmt.Sprintf("ex:s%d", i)
		}
		subj := in.Intern([]byte(name), intern.FlagIRI, 0)
		inPred := in.Intern([]byte(fmt.Sprintf("ex:input%d", i)), intern.FlagIRI, 0)
		outPred := in.Intern([]byte(fmt.Sprintf("ex:output%d", i)), intern.FlagIRI, 0)
		d.Observe(triple.Triple{Subject: subj, Predicate: inPred, Object: in.Intern([]byte("x"), intern.FlagLiteral, 0), ObjectKind: triple.ObjectLiteral}, uint64(i))
		c := d.Observe(triple.Triple{Subject: subj, Predicate: outPred, Object: in.Intern([]byte("y"), intern.FlagLiteral, 0), ObjectKind: triple.ObjectLiteral}, uint64(i))
		require.NotNil(t, c, "pair %d should form a candidate", i)
		if i >= MaxCandidates {
			strong = append(strong, c)
		}
	}
	live := d.Candidates()
	assert.Len(t, live, MaxCandidates)
	for _, c := range strong {
		assert.Contains(t, live, c, "a higher-confidence candidate replaces the minimum")
	}
}
