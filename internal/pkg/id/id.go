package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. ULIDs sort lexicographically by
// creation time, which suits DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
