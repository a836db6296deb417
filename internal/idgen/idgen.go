// Package idgen issues notification identifiers.
//
// The contract: no collisions across the process lifetime, even when records
// are created for many usernames within the same millisecond. UUIDv7 carries
// a monotonically observed timestamp plus random bits, which satisfies that
// without any per-user arithmetic.
package idgen

import "github.com/google/uuid"

// Generator issues unique identifiers.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

// New returns the production UUIDv7-backed generator.
func New() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		// rather than surface an error nobody can act on.
		return uuid.NewString()
	}
	return id.String()
}
