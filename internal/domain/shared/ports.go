package shared

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new kernel records
type IDGenerator interface {
	Generate() uuid.UUID
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now returns the function's result
func (f ClockFunc) Now() time.Time {
	return f()
}

// IDGeneratorFunc adapts a function to the IDGenerator interface
type IDGeneratorFunc func() uuid.UUID

// Generate returns the function's result
func (f IDGeneratorFunc) Generate() uuid.UUID {
	return f()
}
