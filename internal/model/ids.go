package model

import "github.com/google/uuid"

// NewID returns a time-ordered identity: a UUIDv7 carries a millisecond
// timestamp followed by random bits, and the generator keeps values
// monotonic within the process.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
