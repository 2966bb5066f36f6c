// Package id generates user identifiers.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. ULIDs sort by creation time, which keeps
// user records scannable in insertion order without a separate timestamp key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
