package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery status of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
)

// OutboxEntry is a kernel event stored in the same transaction as the
// records it describes, waiting to be relayed to downstream consumers
type OutboxEntry struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	EventID        uuid.UUID
	EventType      string
	PayloadVersion int
	AggregateID    uuid.UUID
	AggregateType  string
	OriginCell     string
	Payload        []byte
	Status         OutboxStatus
	CreatedAt      time.Time
	SentAt         *time.Time
}

// NewOutboxEntry creates a pending entry for a serialized event
func NewOutboxEntry(id uuid.UUID, event DomainEvent, payload []byte, now time.Time) *OutboxEntry {
	entry := &OutboxEntry{
		ID:             id,
		TenantID:       event.TenantID(),
		EventID:        event.EventID(),
		EventType:      event.EventType(),
		PayloadVersion: 1,
		AggregateID:    event.AggregateID(),
		AggregateType:  event.AggregateType(),
		Payload:        payload,
		Status:         OutboxStatusPending,
		CreatedAt:      now,
	}
	if versioned, ok := event.(VersionedEvent); ok {
		entry.PayloadVersion = versioned.PayloadVersion()
		entry.OriginCell = versioned.Origin().Cell
	}
	return entry
}

// MarkSent records delivery. Only pending entries can be sent.
func (e *OutboxEntry) MarkSent(at time.Time) error {
	if e.Status != OutboxStatusPending {
		return NewDomainError("INVALID_STATE", "Only pending outbox entries can be marked sent")
	}
	e.Status = OutboxStatusSent
	e.SentAt = &at
	return nil
}

// OutboxRepository stores outbox entries
type OutboxRepository interface {
	// Save appends entries; an entry whose event id is already stored is skipped
	Save(ctx context.Context, entries ...*OutboxEntry) error

	// FindPending returns pending entries oldest first, at most limit
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)

	// MarkSent moves the pending entries with the given ids to SENT
	MarkSent(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
