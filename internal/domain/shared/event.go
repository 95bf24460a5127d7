package shared

import (
	"time"

	"github.com/google/uuid"
)

// Kernel event types
const (
	EventTypeJournalPosted  = "GL.JOURNAL_POSTED"
	EventTypePeriodClosed   = "GL.PERIOD_CLOSED"
	EventTypeRevaluationRun = "FX.REVALUATION_RUN"
)

// OriginCellMeta identifies the kernel module (and optionally the external
// system) that initiated a journal or event, e.g. "kernel.assets.depreciation".
type OriginCellMeta struct {
	Cell            string `json:"cell"`
	SourceSystem    string `json:"source_system,omitempty"`
	SourceReference string `json:"source_reference,omitempty"`
}

// NewOrigin creates origin metadata for a kernel module
func NewOrigin(cell string) OriginCellMeta {
	return OriginCellMeta{Cell: cell}
}

// WithSource returns a copy tagged with an external source system and reference
func (o OriginCellMeta) WithSource(system, reference string) OriginCellMeta {
	o.SourceSystem = system
	o.SourceReference = reference
	return o
}

// IsZero returns true when no origin cell was recorded
func (o OriginCellMeta) IsZero() bool {
	return o.Cell == ""
}

// Origin cells used by the kernel modules
const (
	OriginPosting           = "kernel.gl.posting"
	OriginPeriodClose       = "kernel.gl.period-close"
	OriginFXRevaluation     = "kernel.fx.revaluation"
	OriginAssetDepreciation = "kernel.assets.depreciation"
	OriginAssetDisposal     = "kernel.assets.disposal"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// VersionedEvent extends DomainEvent with a payload version and the origin
// cell of the module that emitted it. Every kernel event implements it.
type VersionedEvent interface {
	DomainEvent
	// PayloadVersion returns the version of the event payload schema (1, 2, ...)
	PayloadVersion() int
	// Origin returns the emitting module
	Origin() OriginCellMeta
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID            uuid.UUID      `json:"id"`
	Type          string         `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	AggID         uuid.UUID      `json:"aggregate_id"`
	AggType       string         `json:"aggregate_type"`
	TenantIDValue uuid.UUID      `json:"tenant_id"`
	Version       int            `json:"payload_version,omitempty"`
	OriginCell    OriginCellMeta `json:"origin"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// TenantID returns the tenant ID
func (e *BaseDomainEvent) TenantID() uuid.UUID {
	return e.TenantIDValue
}

// PayloadVersion returns the payload version of the event.
// Returns 1 if no version is set.
func (e *BaseDomainEvent) PayloadVersion() int {
	if e.Version == 0 {
		return 1
	}
	return e.Version
}

// Origin returns the origin cell of the event
func (e *BaseDomainEvent) Origin() OriginCellMeta {
	return e.OriginCell
}

// EventMeta carries the identity and timing of a new event. Id and timestamp
// come from the injected IDGenerator and Clock so events are reproducible in tests.
type EventMeta struct {
	ID         uuid.UUID
	OccurredAt time.Time
	TenantID   uuid.UUID
	Origin     OriginCellMeta
}

// NewEventMeta builds EventMeta from the injected id generator and clock
func NewEventMeta(ids IDGenerator, clock Clock, tenantID uuid.UUID, origin OriginCellMeta) EventMeta {
	return EventMeta{
		ID:         ids.Generate(),
		OccurredAt: clock.Now(),
		TenantID:   tenantID,
		Origin:     origin,
	}
}

// NewBaseDomainEvent creates a new base domain event with payload version 1
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID, meta EventMeta) BaseDomainEvent {
	return NewVersionedBaseDomainEvent(eventType, aggType, aggID, meta, 1)
}

// NewVersionedBaseDomainEvent creates a new base domain event with an explicit payload version.
// Versions below 1 default to 1.
func NewVersionedBaseDomainEvent(eventType, aggType string, aggID uuid.UUID, meta EventMeta, payloadVersion int) BaseDomainEvent {
	if payloadVersion < 1 {
		payloadVersion = 1
	}
	return BaseDomainEvent{
		ID:            meta.ID,
		Type:          eventType,
		Timestamp:     meta.OccurredAt,
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: meta.TenantID,
		Version:       payloadVersion,
		OriginCell:    meta.Origin,
	}
}
