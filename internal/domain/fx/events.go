package fx

import (
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeRevaluationRun is the aggregate type of revaluation events
const AggregateTypeRevaluationRun = "RevaluationRun"

// RevaluationRunEvent is published after every revaluation run, posted or not
type RevaluationRunEvent struct {
	shared.BaseDomainEvent
	RunID                uuid.UUID       `json:"run_id"`
	EntityID             uuid.UUID       `json:"entity_id"`
	BaseCurrency         string          `json:"base_currency"`
	CutoffDate           string          `json:"cutoff_date"`
	RevaluationJournalID *uuid.UUID      `json:"revaluation_journal_id"`
	LineCount            int             `json:"line_count"`
	TotalGain            decimal.Decimal `json:"total_gain"`
	TotalLoss            decimal.Decimal `json:"total_loss"`
	MissingRates         []string        `json:"missing_rates,omitempty"`
}

// NewRevaluationRunEvent creates an FX.REVALUATION_RUN event
func NewRevaluationRunEvent(runID, entityID uuid.UUID, meta shared.EventMeta) *RevaluationRunEvent {
	return &RevaluationRunEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(shared.EventTypeRevaluationRun, AggregateTypeRevaluationRun, runID, meta),
		RunID:           runID,
		EntityID:        entityID,
		TotalGain:       decimal.Zero,
		TotalLoss:       decimal.Zero,
	}
}
