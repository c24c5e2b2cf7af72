// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from notice descriptions
// before they are stored. Descriptions are authored by organization admins
// but rendered to anonymous viewers, so script, event handlers, and
// javascript: URLs must never survive the write path.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowTables()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}

// Sanitize returns the input with unsafe HTML removed. Plain text passes
// through unchanged.
func Sanitize(in string) string {
	if in == "" {
		return ""
	}
	return policy.Sanitize(in)
}
