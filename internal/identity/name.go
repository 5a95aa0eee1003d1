package identity

import "strings"

// FirstName returns the first whitespace-separated token of a display name,
// or "" when the name is empty.
func FirstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns everything after the first token, rejoined with single
// spaces, or "" when the name has fewer than two tokens.
//
// This is deliberately naive — no particles, no multiple given names, no
// locale awareness. The external system only wants a rough first/last split
// for display; users fix their own profile after migration.
func LastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
