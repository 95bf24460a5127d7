package ledger

import (
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeJournal = "Journal"
	AggregateTypePeriod  = "Period"
)

// JournalPostedEvent is published after a journal has been persisted
type JournalPostedEvent struct {
	shared.BaseDomainEvent
	JournalID   uuid.UUID       `json:"journal_id"`
	EntityID    uuid.UUID       `json:"entity_id"`
	PeriodID    uuid.UUID       `json:"period_id"`
	JournalDate string          `json:"journal_date"`
	Reference   string          `json:"reference,omitempty"`
	LineCount   int             `json:"line_count"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// NewJournalPostedEvent creates a GL.JOURNAL_POSTED event. The origin cell is the journal's.
func NewJournalPostedEvent(journal *JournalEntry, meta shared.EventMeta) *JournalPostedEvent {
	meta.Origin = journal.Origin
	return &JournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(shared.EventTypeJournalPosted, AggregateTypeJournal, journal.ID, meta),
		JournalID:       journal.ID,
		EntityID:        journal.EntityID,
		PeriodID:        journal.PeriodID,
		JournalDate:     journal.JournalDate.Format("2006-01-02"),
		Reference:       journal.Reference,
		LineCount:       len(journal.Lines),
		TotalDebit:      journal.TotalDebit(),
		TotalCredit:     journal.TotalCredit(),
	}
}

// PeriodClosedEvent is published when a period moves from OPEN to CLOSED
type PeriodClosedEvent struct {
	shared.BaseDomainEvent
	PeriodID   uuid.UUID `json:"period_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	PeriodCode string    `json:"period_code"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
}

// NewPeriodClosedEvent creates a GL.PERIOD_CLOSED event
func NewPeriodClosedEvent(period *Period, meta shared.EventMeta) *PeriodClosedEvent {
	return &PeriodClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(shared.EventTypePeriodClosed, AggregateTypePeriod, period.ID, meta),
		PeriodID:        period.ID,
		EntityID:        period.EntityID,
		PeriodCode:      period.Code,
		StartDate:       period.StartDate.Format("2006-01-02"),
		EndDate:         period.EndDate.Format("2006-01-02"),
	}
}
