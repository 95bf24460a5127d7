// Package clock provides the production and test implementations of the
// kernel's clock and id generator ports.
package clock

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
)

// System reads the wall clock in UTC
type System struct{}

// Now returns the current UTC time
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant
type Fixed time.Time

// Now returns the fixed instant
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// UUIDv7 generates time-ordered identifiers
type UUIDv7 struct{}

// Generate returns a new UUIDv7, falling back to a random UUID if the
// entropy source fails
func (UUIDv7) Generate() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Sequence generates predictable ids 00000000-0000-0000-0000-000000000001, ...
type Sequence struct {
	mu   sync.Mutex
	next uint64
}

// NewSequence creates a sequence starting at 1
func NewSequence() *Sequence {
	return &Sequence{}
}

// Generate returns the next id
func (s *Sequence) Generate() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], s.next)
	return id
}
