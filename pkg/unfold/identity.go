package unfold

import "strings"

// IdentityPolicy selects how a node's period-independent base name is derived
// from its raw identifier. Input identifiers may already carry a temporal
// suffix (e.g. "n3_0" for node n3 in cycle 0) which must be collapsed before
// re-expansion.
type IdentityPolicy int

const (
	// IdentityTrailingIndex strips a trailing all-numeric segment:
	// "n3_0_1" → "n3_0", "mul_2" → "mul", "add" → "add".
	// Identifiers without a numeric final segment are returned unchanged.
	IdentityTrailingIndex IdentityPolicy = iota

	// IdentityFirstSegment takes everything before the first separator:
	// "n3_0_1" → "n3", "add" → "add".
	IdentityFirstSegment
)

// String returns the policy name used in flags and config files.
func (p IdentityPolicy) String() string {
	switch p {
	case IdentityFirstSegment:
		return "first-segment"
	default:
		return "trailing-index"
	}
}

// BaseName derives the period-independent base name of a node identifier
// under the given policy. Every input has a well-defined base name; there are
// no error cases.
func BaseName(policy IdentityPolicy, id, sep string) string {
	switch policy {
	case IdentityFirstSegment:
		if i := strings.Index(id, sep); i >= 0 {
			return id[:i]
		}
		return id
	default:
		parts := strings.Split(id, sep)
		if len(parts) > 1 && isNumeric(parts[len(parts)-1]) {
			return strings.Join(parts[:len(parts)-1], sep)
		}
		return id
	}
}

// isNumeric reports whether s is non-empty and consists only of ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
