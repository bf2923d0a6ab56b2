// Package discovery implements the streaming pattern-discovery engine
// (C7): classifying triples against an 80/20 frequency model and
// synthesizing typed input/output field schemas from observed
// co-occurrences (§4.6).
package discovery

import (
	"bytes"

	"github.com/semcore/semcore/intern"
)

// Class is the pattern classification assigned to a triple.
type Class uint8

const (
	TypeDecl Class = iota
	Label
	Property
	Hierarchy
	Other
	DspyInput
	DspyOutput
	Signature
)

func (c Class) String() string {
	switch c {
	case TypeDecl:
		return "TypeDecl"
	case Label:
		return "Label"
	case Property:
		return "Property"
	case Hierarchy:
		return "Hierarchy"
	case Other:
		return "Other"
	case DspyInput:
		return "DspyInput"
	case DspyOutput:
		return "DspyOutput"
	case Signature:
		return "Signature"
	default:
		return "Unknown"
	}
}

// Vocabulary names the exactly-matched predicates the classifier
// recognizes before falling back to heuristics.
type Vocabulary struct {
	RDFType       intern.StringRef
	RDFSLabel     intern.StringRef
	SubClassOf    intern.StringRef
	SubPropertyOf intern.StringRef
}

var propertyHeuristicSubstrings = [][]byte{[]byte("has"), []byte("contains"), []byte("value")}
var systemNamespacePrefixes = [][]byte{[]byte("rdf:"), []byte("rdfs:"), []byte("owl:")}

// Classifier assigns a Class to each observed triple's predicate.
type Classifier struct {
	vocab    Vocabulary
	interner *intern.Interner
}

// NewClassifier builds a classifier over vocab, resolving predicate
// bytes for the heuristic path through interner.
func NewClassifier(vocab Vocabulary, interner *intern.Interner) *Classifier {
	return &Classifier{vocab: vocab, interner: interner}
}

// Classify assigns exactly one Class to predicate, per §4.6.
func (c *Classifier) Classify(predicate intern.StringRef, isLiteralObject bool) Class {
	switch {
	case predicate.Equal(c.vocab.RDFType):
		return TypeDecl
	case predicate.Equal(c.vocab.RDFSLabel):
		return Label
	case predicate.Equal(c.vocab.SubClassOf), predicate.Equal(c.vocab.SubPropertyOf):
		return Hierarchy
	}

	b, ok := c.interner.Resolve(predicate)
	if !ok {
		return Other
	}
	if hasAnyPrefix(b, systemNamespacePrefixes) {
		return Other
	}
	if isLiteralObject {
		return Property
	}
	if hasAnySubstring(b, propertyHeuristicSubstrings) {
		return Property
	}
	return Other
}

func hasAnyPrefix(b []byte, prefixes [][]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(b, p) {
			return true
		}
	}
	return false
}

func hasAnySubstring(b []byte, subs [][]byte) bool {
	lower := bytes.ToLower(b)
	for _, s := range subs {
		if bytes.Contains(lower, s) {
			return true
		}
	}
	return false
}
