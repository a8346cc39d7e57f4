package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time to use cases. Domain methods never read the
// wall clock themselves; they receive `now` from the caller.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies identities to aggregate factories.
type IDGenerator interface {
	NewID() string
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces random (v4) UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.New().String() }
