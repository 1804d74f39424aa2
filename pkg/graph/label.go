package graph

import "strings"

// NormalizeLabel round-trips a label value into canonical quoted form:
// any existing quote characters are stripped and the result is wrapped in a
// single pair of double quotes. Applying it twice yields the same string as
// applying it once.
//
// Attribute values are stored verbatim as they appeared in the input text,
// quotes included, so both `1` and `"1"` normalize to `"1"`.
func NormalizeLabel(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

// UnquoteValue strips surrounding quote characters from an attribute value.
// Used when interpreting a stored value (e.g. parsing a delay) or when
// emitting unquoted attributes like constraint and color.
func UnquoteValue(s string) string {
	return strings.Trim(s, `"`)
}
