// internal/app/system/groupid/groupid.go

// Package groupid generates and normalizes the shareable group identifiers
// viewers present to read a group's notices. Identifiers are capability
// tokens: possession is the whole authorization check, so they must be easy
// to read aloud and retype while staying collision-resistant.
package groupid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Prefix tags every identifier so a pasted string is recognizable at a
// glance and trivially distinguishable from other products' codes.
const Prefix = "NH"

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var shape = regexp.MustCompile(`^` + Prefix + `-[0-9A-Z]{4}-[0-9A-Z]{4}-[0-9A-Z]{4}$`)

// New builds an identifier of the form NH-AAAA-BBBB-CCCC:
//
//	AAAA  first 4 chars of the issuing org id, upper-cased; ties the
//	      token to its issuer for debugging, carries no secrecy
//	BBBB  4 chars drawn from crypto/rand over base 36
//	CCCC  last 4 base-36 chars of the creation time in milliseconds,
//	      monotonic per org so rapid successive creates stay distinct
//
// New performs no uniqueness check itself; the organizations store rejects
// the astronomically rare duplicate via a unique index and retries.
func New(orgID string, now time.Time) (string, error) {
	random, err := randBase36(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s-%s", Prefix, orgSegment(orgID), random, timeSegment(now)), nil
}

// Normalize canonicalizes viewer input: whitespace trimmed, upper-cased.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s (already normalized) has the identifier shape.
func Valid(s string) bool {
	return shape.MatchString(s)
}

func orgSegment(orgID string) string {
	seg := strings.ToUpper(orgID)
	if len(seg) > 4 {
		seg = seg[:4]
	}
	// Org ids are hex ObjectIDs in practice; shorter input gets padded.
	for len(seg) < 4 {
		seg += "X"
	}
	return seg
}

func timeSegment(now time.Time) string {
	seg := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(seg) > 4 {
		seg = seg[len(seg)-4:]
	}
	for len(seg) < 4 {
		seg = "0" + seg
	}
	return seg
}

func randBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base36[v.Int64()]
	}
	return string(b), nil
}
