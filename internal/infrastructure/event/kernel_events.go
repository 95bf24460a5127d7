package event

import (
	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
)

// NewKernelSerializer returns a serializer with every kernel event registered
func NewKernelSerializer() *Serializer {
	s := NewSerializer()
	s.Register(shared.EventTypeJournalPosted, 1, &ledger.JournalPostedEvent{})
	s.Register(shared.EventTypePeriodClosed, 1, &ledger.PeriodClosedEvent{})
	s.Register(shared.EventTypeRevaluationRun, 1, &fx.RevaluationRunEvent{})
	return s
}
