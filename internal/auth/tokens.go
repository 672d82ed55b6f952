package auth

import (
	"math/rand"
	"strconv"
	"time"
)

// TokenGenerator produces opaque bearer tokens.
type TokenGenerator interface {
	Generate() string
}

// Base36Generator reproduces the token scheme of the backend this replaces: a
// random base-36 fragment concatenated with the current Unix-millisecond time
// in base 36. Not cryptographically secure and collisions are possible; the
// scheme is kept for wire compatibility with existing clients and fixtures.
type Base36Generator struct{}

func NewBase36Generator() *Base36Generator {
	return &Base36Generator{}
}

func (g *Base36Generator) Generate() string {
	fragment := strconv.FormatInt(rand.Int63(), 36)
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fragment + stamp
}
