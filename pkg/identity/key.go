// Package identity derives composite node keys and caches their mapping to
// backend node IDs.
package identity

import "strings"

// Separator joins the value and name halves of a composite key. Any literal
// occurrence of it inside name or value is substituted with Replacement
// before joining, so the key remains a deterministic surrogate for the
// (name, value) pair.
const (
	Separator   = "|"
	Replacement = "¦"
)

// Key derives the composite key for a (name, value) pair.
//
// The key is lowercase(value) + Separator + lowercase(name) after separator
// escaping. Keys are never produced any other way; two keys are equal exactly
// when the escaped, lowercased pairs are equal.
func Key(name, value string) string {
	return escape(strings.ToLower(value)) + Separator + escape(strings.ToLower(name))
}

func escape(s string) string {
	return strings.ReplaceAll(s, Separator, Replacement)
}
