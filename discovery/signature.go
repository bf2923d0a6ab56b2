package discovery

import (
	"fmt"

	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/shacl"
)

// MaxFieldsPerSignature mirrors shacl.MaxConstraintsPerShape: each
// field contributes at most two constraints (MinCount + Datatype), so
// a ≤16-constraint shape bounds fields to 8; §3's own cap of ≤16
// fields is the looser of the two and is enforced here directly.
const MaxFieldsPerSignature = 16

// Field is a durable signature's per-field record — the promoted,
// no-longer-provisional counterpart of FieldCand.
type Field struct {
	Name        string
	IsInput     bool
	OWLDatatype string
}

// Signature is a durable signature (§3): created by promotion, never
// modified except by replacing the whole record atomically.
type Signature struct {
	ID          uint64
	FieldCount  int
	Fields      []Field
	ShapeIRI    intern.StringRef
	FieldHashes []uint32
}

var datatypeHashes = map[string]uint32{
	"integer":  1,
	"decimal":  2,
	"boolean":  3,
	"dateTime": 4,
	"string":   5,
	"iri":      0,
}

// Promote registers a durable signature for c: it synthesizes a
// shape with a MinCount(1) and, for literal-typed fields, a Datatype
// constraint per field (§4.6: "registers it with the validator,
// synthesizing a shape with cardinality and datatype constraints").
func Promote(c *Candidate, validator *shacl.Validator, interner *intern.Interner, id uint64) (*Signature, error) {
	if len(c.Fields) > MaxFieldsPerSignature {
		return nil, fmt.Errorf("signature %s exceeds %d fields", c.Name, MaxFieldsPerSignature)
	}

	shapeIRI := interner.Intern([]byte(fmt.Sprintf("shape:%s", c.Name)), intern.FlagIRI, 0)
	targetClass := interner.Intern([]byte(fmt.Sprintf("class:%s", c.Name)), intern.FlagIRI, 0)
	if _, err := validator.LoadShape(shapeIRI, targetClass); err != nil {
		return nil, err
	}

	sig := &Signature{ID: id, ShapeIRI: shapeIRI, FieldCount: len(c.Fields)}

	props := [2]intern.StringRef{c.inputPredicate, c.outputPredicate}
	for i, fc := range c.Fields {
		prop := props[i%len(props)]
		if err := validator.AddConstraint(shapeIRI, &shacl.Constraint{
			Kind:         shacl.KindMinCount,
			PropertyPath: prop,
			Param:        shacl.Param{Int: 1},
			Severity:     shacl.SeverityViolation,
		}); err != nil {
			return nil, err
		}
		if fc.OWLDatatype != "iri" {
			if err := validator.AddConstraint(shapeIRI, &shacl.Constraint{
				Kind:         shacl.KindDatatype,
				PropertyPath: prop,
				Param:        shacl.Param{Int: int64(datatypeHashes[fc.OWLDatatype])},
				Severity:     shacl.SeverityViolation,
			}); err != nil {
				return nil, err
			}
		}

		field := Field{Name: fc.Name, IsInput: fc.IsInput, OWLDatatype: fc.OWLDatatype}
		sig.Fields = append(sig.Fields, field)
		sig.FieldHashes = append(sig.FieldHashes, prop.Hash)
	}
	return sig, nil
}

// EligibleForPromotion reports whether c meets the promotion gates of
// §4.6: confidence ≥ threshold, observation_count ≥ 3, field_count ≥ 2.
func EligibleForPromotion(c *Candidate, threshold float64) bool {
	return c.Confidence >= threshold && c.ObservationCount >= MinObservationsDefault && c.FieldCount >= MinFieldCount
}
