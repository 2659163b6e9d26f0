package util

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string, used for pipeline session IDs and
// persisted record IDs. A fresh monotonic entropy source seeded with the
// current time is enough here; sessions are created far apart compared to
// ULID timestamp resolution.
func NewULID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
