package discovery

import (
	"bytes"
	"strconv"
)

// InferLiteralDatatype infers an OWL/XSD-ish datatype tag from a
// literal's raw bytes, per §4.6: integer, decimal, boolean, dateTime
// (both "T" and ":" present), otherwise string.
func InferLiteralDatatype(b []byte) string {
	s := string(b)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return "integer"
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return "decimal"
	}
	if s == "true" || s == "false" {
		return "boolean"
	}
	if bytes.ContainsRune(b, 'T') && bytes.ContainsRune(b, ':') {
		return "dateTime"
	}
	return "string"
}
