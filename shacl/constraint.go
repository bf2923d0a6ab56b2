package shacl

import "github.com/semcore/semcore/intern"

// ConstraintKind selects exactly one active field of Param and exactly
// one evaluator in the dispatch table.
type ConstraintKind uint8

const (
	KindClass ConstraintKind = iota
	KindDatatype
	KindNodeKind
	KindMinCount
	KindMaxCount
	KindMinLength
	KindMaxLength
	KindPattern
	KindMinExclusive
	KindMinInclusive
	KindMaxExclusive
	KindMaxInclusive
	KindIn
	KindMemoryBound
	KindHasValue
	numKinds
)

func (k ConstraintKind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindDatatype:
		return "Datatype"
	case KindNodeKind:
		return "NodeKind"
	case KindMinCount:
		return "MinCount"
	case KindMaxCount:
		return "MaxCount"
	case KindMinLength:
		return "MinLength"
	case KindMaxLength:
		return "MaxLength"
	case KindPattern:
		return "Pattern"
	case KindMinExclusive:
		return "MinExclusive"
	case KindMinInclusive:
		return "MinInclusive"
	case KindMaxExclusive:
		return "MaxExclusive"
	case KindMaxInclusive:
		return "MaxInclusive"
	case KindIn:
		return "In"
	case KindMemoryBound:
		return "MemoryBound"
	case KindHasValue:
		return "HasValue"
	default:
		return "Unknown"
	}
}

// NodeKindParam is the allowed-kind bitset for a NodeKind constraint.
type NodeKindParam uint8

const (
	NodeKindIRI NodeKindParam = 1 << iota
	NodeKindBlank
	NodeKindLiteral
)

const (
	NodeKindBlankOrIRI     = NodeKindBlank | NodeKindIRI
	NodeKindBlankOrLiteral = NodeKindBlank | NodeKindLiteral
	NodeKindIRIOrLiteral   = NodeKindIRI | NodeKindLiteral
	NodeKindAny            = NodeKindIRI | NodeKindBlank | NodeKindLiteral
)

// Severity classifies a constraint's reporting level.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityViolation
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// Param is a tagged union of every constraint parameter shape. Kind
// determines which field is active; Go has no sum type, so this
// mirrors the source's union with unused fields simply left zero.
type Param struct {
	Int         int64
	Decimal     float64
	StringRef   intern.StringRef
	NodeKind    NodeKindParam
	MemoryLimit int64
	StringList  []intern.StringRef
	Pattern     *CompiledPattern
}

// Metrics accumulates a constraint's runtime effectiveness signal.
type Metrics struct {
	Evaluations       uint64
	Violations        uint64
	EWMAEffectiveness float64
}

// Constraint is one typed predicate attached to a shape.
type Constraint struct {
	Kind         ConstraintKind
	PropertyPath intern.StringRef
	Param        Param
	Severity     Severity
	Metrics      Metrics
}

// EffectivenessAlpha is the EWMA smoothing factor from §4.4.
const EffectivenessAlpha = 0.1

// observeEffectiveness updates the running EWMA after one evaluation.
// currentFlag is 1 when this evaluation's result affected the overall
// verdict (i.e. it produced or would have produced a violation).
func (c *Constraint) observeEffectiveness(currentFlag float64) {
	c.Metrics.EWMAEffectiveness = EffectivenessAlpha*currentFlag + (1-EffectivenessAlpha)*c.Metrics.EWMAEffectiveness
}
