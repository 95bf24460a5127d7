package models

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxEntryModel is the persistence model for kernel events awaiting relay
type OutboxEntryModel struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	EventID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	EventType      string              `gorm:"type:varchar(64);not null"`
	PayloadVersion int                 `gorm:"not null;default:1"`
	AggregateID    uuid.UUID           `gorm:"type:uuid;not null"`
	AggregateType  string              `gorm:"type:varchar(64);not null"`
	OriginCell     string              `gorm:"type:varchar(100)"`
	Payload        []byte              `gorm:"not null"`
	Status         shared.OutboxStatus `gorm:"type:varchar(10);not null;default:'PENDING';index:idx_outbox_status_created,priority:1"`
	CreatedAt      time.Time           `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	SentAt         *time.Time
}

// TableName returns the table name for GORM
func (OutboxEntryModel) TableName() string {
	return "kernel_event_outbox"
}

// ToDomain converts the model to a domain OutboxEntry
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:             m.ID,
		TenantID:       m.TenantID,
		EventID:        m.EventID,
		EventType:      m.EventType,
		PayloadVersion: m.PayloadVersion,
		AggregateID:    m.AggregateID,
		AggregateType:  m.AggregateType,
		OriginCell:     m.OriginCell,
		Payload:        m.Payload,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		SentAt:         m.SentAt,
	}
}

// OutboxEntryModelFromDomain creates a model from a domain OutboxEntry
func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	return &OutboxEntryModel{
		ID:             e.ID,
		TenantID:       e.TenantID,
		EventID:        e.EventID,
		EventType:      e.EventType,
		PayloadVersion: e.PayloadVersion,
		AggregateID:    e.AggregateID,
		AggregateType:  e.AggregateType,
		OriginCell:     e.OriginCell,
		Payload:        e.Payload,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
		SentAt:         e.SentAt,
	}
}
