package ledger

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodStatus represents the lifecycle state of an accounting period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusOpen, PeriodStatusClosed, PeriodStatusLocked:
		return true
	}
	return false
}

// String returns the string representation of PeriodStatus
func (s PeriodStatus) String() string {
	return string(s)
}

// Period is a tenant/entity scoped accounting date range.
// Status moves OPEN -> CLOSED -> LOCKED and never back.
type Period struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	EntityID  uuid.UUID
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
	ClosedAt  *time.Time
}

// NewPeriod creates an OPEN period covering [start, end]
func NewPeriod(id, tenantID, entityID uuid.UUID, code string, start, end time.Time) (*Period, error) {
	start, end = shared.DateOf(start), shared.DateOf(end)
	if end.Before(start) {
		return nil, shared.NewDomainError("INVALID_PERIOD_RANGE", "Period end date cannot be before start date")
	}
	return &Period{
		ID:        id,
		TenantID:  tenantID,
		EntityID:  entityID,
		Code:      code,
		StartDate: start,
		EndDate:   end,
		Status:    PeriodStatusOpen,
	}, nil
}

// Contains reports whether the calendar day of t falls inside the period (inclusive)
func (p *Period) Contains(t time.Time) bool {
	d := shared.DateOf(t)
	return !d.Before(shared.DateOf(p.StartDate)) && !d.After(shared.DateOf(p.EndDate))
}

// IsOpen returns true if journals may be posted into the period
func (p *Period) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// Close transitions OPEN -> CLOSED
func (p *Period) Close(at time.Time) error {
	if p.Status != PeriodStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only an open period can be closed, current status: "+string(p.Status))
	}
	p.Status = PeriodStatusClosed
	p.ClosedAt = &at
	return nil
}

// Lock transitions CLOSED -> LOCKED
func (p *Period) Lock() error {
	if p.Status != PeriodStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Only a closed period can be locked, current status: "+string(p.Status))
	}
	p.Status = PeriodStatusLocked
	return nil
}
