// internal/app/system/apikey/apikey.go

// Package apikey mints the machine-ingestion credentials organizations hand
// to external integrations. A key authorizes notice creation only, and only
// while the organization has api_access enabled.
package apikey

import (
	"strings"

	"github.com/google/uuid"
)

// HeaderName is the request header the ingestion endpoint reads.
const HeaderName = "X-API-Key"

const prefix = "nh_"

// New mints a fresh key. The prefix makes leaked keys greppable and the
// UUID body keeps them unguessable enough for a per-org credential.
func New() string {
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Plausible is a cheap shape check done before touching the database, so
// obviously malformed headers don't cost a lookup.
func Plausible(key string) bool {
	return strings.HasPrefix(key, prefix) && len(key) == len(prefix)+32
}
