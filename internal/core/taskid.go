package core

import "github.com/google/uuid"

// IDGenerator produces identifiers for new tasks.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator that issues random (version 4) UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}
