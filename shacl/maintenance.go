package shacl

import (
	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/intern"
)

// PruningThreshold is the default EWMA floor below which a constraint
// becomes a pruning candidate (§4.4).
const PruningThreshold = 0.2

// PruneCandidate reports a constraint whose effectiveness has decayed
// below threshold, identified by a copy of its owning shape and its
// kind. The constraint's index within the shape is not recorded.
type PruneCandidate struct {
	ShapeIRI       Shape
	ConstraintKind ConstraintKind
	EWMA           float64
}

// Maintain runs the off-hot-path maintenance pass: it never evaluates
// constraints, only inspects the effectiveness metrics already
// accumulated by eval_constraint, and returns constraints below
// threshold for the caller to prune or relax.
func (v *Validator) Maintain(threshold float64) []PruneCandidate {
	if threshold <= 0 {
		threshold = PruningThreshold
	}

	v.mu.Lock()
	order := append([]*Shape(nil), v.order...)
	v.mu.Unlock()

	var candidates []PruneCandidate
	for _, shape := range order {
		for _, c := range shape.Constraints {
			if c.Metrics.Evaluations > 0 && c.Metrics.EWMAEffectiveness < threshold {
				candidates = append(candidates, PruneCandidate{
					ShapeIRI:       *shape,
					ConstraintKind: c.Kind,
					EWMA:           c.Metrics.EWMAEffectiveness,
				})
			}
		}
	}
	return candidates
}

// RemoveConstraint drops the constraint at idx from the shape
// registered under shapeIRI, used by the maintenance caller after
// deciding to prune a low-effectiveness constraint. Returns
// errs.ErrNotFound for an unknown shape.
func (v *Validator) RemoveConstraint(shapeIRI intern.StringRef, idx int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	shape, ok := v.shapes.get(shapeIRI)
	if !ok {
		return errs.ErrNotFound
	}
	if idx < 0 || idx >= len(shape.Constraints) {
		return errs.ErrInvalidArgument
	}
	shape.Constraints = append(shape.Constraints[:idx], shape.Constraints[idx+1:]...)
	return nil
}
