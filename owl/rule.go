// Package owl implements the bounded forward-chaining reasoner (C6):
// a closed, four-rule RDFS/OWL fragment compiled to a flat rule table
// and dispatched by predicate through a bitset applicability index.
package owl

import "github.com/semcore/semcore/intern"

// RuleKind tags which of the four closed inference patterns (§4.5) a
// Rule instance encodes.
type RuleKind uint8

const (
	// RuleSubClassOf: ?x rdf:type A, A rdfs:subClassOf B ⇒ ?x rdf:type B
	RuleSubClassOf RuleKind = iota
	// RuleSubPropertyOf: ?p rdfs:subPropertyOf ?q, ?x ?p ?y ⇒ ?x ?q ?y
	RuleSubPropertyOf
	// RuleDomain: ?p rdfs:domain A, ?x ?p ?y ⇒ ?x rdf:type A
	RuleDomain
	// RuleRange: ?p rdfs:range B, ?x ?p ?y ⇒ ?y rdf:type B
	RuleRange
)

func (k RuleKind) String() string {
	switch k {
	case RuleSubClassOf:
		return "subClassOf"
	case RuleSubPropertyOf:
		return "subPropertyOf"
	case RuleDomain:
		return "domain"
	case RuleRange:
		return "range"
	default:
		return "unknown"
	}
}

// Rule is one instance of a closed inference pattern, carrying the
// two schema-level references the pattern needs (the "A"/"B"/"q" in
// §4.5's notation). This is a documented kind-tag-plus-operands
// struct rather than an opaque 64-bit bitmask: readability won over
// the source's packed encoding, since Go has no use for bit-packing a
// handful of fields into one machine word (see DESIGN.md's Open
// Question #1). The bitmask the spec reserves for the rule table is
// instead used purely as a per-predicate applicability index, below.
type Rule struct {
	Kind      RuleKind
	Predicate intern.StringRef // the schema predicate the rule fires on (subClassOf/subPropertyOf/domain/range triple's subject position)
	Operand   intern.StringRef // the schema target (A, B, or q)
}

// MaxRules bounds the rule table per §4.5 ("≤64 rules").
const MaxRules = 64
