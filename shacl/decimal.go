package shacl

import "strconv"

// parseDecimal parses a literal's resolved bytes as a float64 for the
// range constraint kinds. Non-numeric literals simply fail to
// conform, per §4.4's "parse literal as decimal; compare".
func parseDecimal(b []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
