package shacl

import "regexp"

// CompiledPattern wraps a precompiled regular expression so the
// Pattern constraint evaluator never pays compilation cost on the hot
// path; compilation happens once, in CompilePattern, when the caller
// builds the constraint's Param. AddConstraint compiles nothing.
type CompiledPattern struct {
	re *regexp.Regexp
}

// CompilePattern precompiles expr. Returns the regexp compile error on
// a malformed expression.
func CompilePattern(expr string) (*CompiledPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &CompiledPattern{re: re}, nil
}

// Match reports whether b satisfies the pattern.
func (p *CompiledPattern) Match(b []byte) bool {
	return p.re.Match(b)
}
