package shacl

import (
	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/triple"
)

// rdfTypeHash and friends would normally be resolved through the
// interner at startup; the Validator is handed the already-interned
// rdf:type reference so evaluators never intern on the hot path.
type evalContext struct {
	graph    *triple.Graph
	interner *intern.Interner
	rdfType  intern.StringRef
}

// valueEvaluator checks one property value against a constraint.
// Returns whether the value conforms; evalPerValue adds up the memory
// footprint itself.
type valueEvaluator func(ctx *evalContext, value intern.StringRef, kind triple.ObjectKind, c *Constraint) bool

var valueEvaluators = map[ConstraintKind]valueEvaluator{
	KindClass:        evalClass,
	KindDatatype:     evalDatatype,
	KindNodeKind:     evalNodeKind,
	KindMinLength:    evalMinLength,
	KindMaxLength:    evalMaxLength,
	KindPattern:      evalPattern,
	KindMinExclusive: evalMinExclusive,
	KindMinInclusive: evalMinInclusive,
	KindMaxExclusive: evalMaxExclusive,
	KindMaxInclusive: evalMaxInclusive,
	KindIn:           evalIn,
	KindHasValue:     evalHasValue,
}

func evalClass(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	return ctx.graph.Has(value, ctx.rdfType, c.Param.StringRef)
}

func evalDatatype(_ *evalContext, value intern.StringRef, kind triple.ObjectKind, c *Constraint) bool {
	if kind != triple.ObjectLiteral {
		return false
	}
	return value.DatatypeHash == uint32(c.Param.Int)
}

func evalNodeKind(_ *evalContext, _ intern.StringRef, kind triple.ObjectKind, c *Constraint) bool {
	var bit NodeKindParam
	switch kind {
	case triple.ObjectIRI:
		bit = NodeKindIRI
	case triple.ObjectBlank:
		bit = NodeKindBlank
	case triple.ObjectLiteral:
		bit = NodeKindLiteral
	}
	return c.Param.NodeKind&bit != 0
}

func evalMinLength(_ *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	return int64(value.Length) >= c.Param.Int
}

func evalMaxLength(_ *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	return int64(value.Length) <= c.Param.Int
}

func evalPattern(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	if c.Param.Pattern == nil {
		return false
	}
	b, ok := ctx.interner.Resolve(value)
	if !ok {
		return false
	}
	return c.Param.Pattern.Match(b)
}

func decimalOf(ctx *evalContext, value intern.StringRef) (float64, bool) {
	b, ok := ctx.interner.Resolve(value)
	if !ok {
		return 0, false
	}
	return parseDecimal(b)
}

func evalMinExclusive(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	d, ok := decimalOf(ctx, value)
	return ok && d > c.Param.Decimal
}

func evalMinInclusive(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	d, ok := decimalOf(ctx, value)
	return ok && d >= c.Param.Decimal
}

func evalMaxExclusive(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	d, ok := decimalOf(ctx, value)
	return ok && d < c.Param.Decimal
}

func evalMaxInclusive(ctx *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	d, ok := decimalOf(ctx, value)
	return ok && d <= c.Param.Decimal
}

func evalIn(_ *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	for _, allowed := range c.Param.StringList {
		if allowed.Equal(value) {
			return true
		}
	}
	return false
}

func evalHasValue(_ *evalContext, value intern.StringRef, _ triple.ObjectKind, c *Constraint) bool {
	return c.Param.StringRef.Equal(value)
}
