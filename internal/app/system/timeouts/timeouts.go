// Package timeouts centralizes the context deadlines wrapped around store
// calls that need one tighter than the request's, so callers don't invent
// their own numbers.
//
//   - Ping: connectivity checks (startup, health endpoint)
//   - Short: single-document lookups on hot paths (OAuth callback)
package timeouts

import "time"

const (
	ping  = 2 * time.Second
	short = 5 * time.Second
)

// Ping returns the timeout for connectivity verification.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document lookups.
func Short() time.Duration { return short }
