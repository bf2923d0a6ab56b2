// Package triple implements the compact triple model (C4) and the
// subject-indexed graph it is stored in. Triples are created by the
// external parser (spec.md §6) and are immutable thereafter; this
// package never tokenizes Turtle text itself.
package triple

import "github.com/semcore/semcore/intern"

// ObjectKind tags the shape of a triple's object position.
type ObjectKind uint8

const (
	ObjectIRI ObjectKind = iota
	ObjectBlank
	ObjectLiteral
)

// Triple is the compact 3-tuple of interned references plus the
// object-kind tag and confidence score from spec.md §3.
type Triple struct {
	Subject    intern.StringRef
	Predicate  intern.StringRef
	Object     intern.StringRef
	ObjectKind ObjectKind
	Confidence uint8
}

// IsLiteral reports whether the object position holds a literal.
func (t Triple) IsLiteral() bool {
	return t.ObjectKind == ObjectLiteral
}
