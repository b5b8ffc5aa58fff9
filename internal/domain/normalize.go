package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for competitor-name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitHumanName splits a display name into first/last parts. Everything after
// the first token becomes the last name; a single-token name has an empty last
// name.
func SplitHumanName(s string) (first, last string) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
