// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied strings before storage or
// comparison. Keeping the rules in one place means signup, login, and the
// ingestion endpoint cannot drift apart on what "the same email" means.
package normalize

import "strings"

// Email trims whitespace and lower-cases. Emails are compared
// case-insensitively everywhere.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace but preserves case (display names keep the casing
// the admin typed).
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod trims and lower-cases an auth method value ("password",
// "google").
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
