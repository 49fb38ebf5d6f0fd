// Package uid generates identifiers: UUIDv7 strings for workflow instances and
// snowflake numbers for published events.
package uid

import "github.com/google/uuid"

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates time-ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}

// UUID generates RFC 9562 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUIDv7 string, or a v4 when v7 fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsUUID reports whether s parses as a UUID of any version.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}
