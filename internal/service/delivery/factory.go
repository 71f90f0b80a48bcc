package delivery

import "github.com/google/uuid"

// IDFactory mints delivery identifiers.
type IDFactory interface {
	NewID() string
}

type uuidFactory struct{}

// NewIDFactory returns the default random UUID factory.
func NewIDFactory() IDFactory {
	return uuidFactory{}
}

// NewID returns a random v4 UUID string.
func (uuidFactory) NewID() string {
	return uuid.NewString()
}
