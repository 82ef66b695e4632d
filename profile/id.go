package profile

import (
	"strings"

	"github.com/google/uuid"
)

const idLength = 12

// RandomID returns a short token cut from a random uuid. On its own it only
// makes collisions unlikely; NewID adds the membership check.
func RandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// NewID returns a token from gen for which taken reports false, drawing again
// on every collision. A nil gen means RandomID.
func NewID(gen func() string, taken func(string) bool) string {
	if gen == nil {
		gen = RandomID
	}
	for {
		id := gen()
		if id == "" {
			continue
		}
		if taken == nil || !taken(id) {
			return id
		}
	}
}
