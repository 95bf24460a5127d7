package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panic  string
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panic != "" {
		panic(h.panic)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// eventFactory builds kernel events with predictable ids
type eventFactory struct {
	tenantID uuid.UUID
	entityID uuid.UUID
	ids      *clock.Sequence
}

func newEventFactory() *eventFactory {
	return &eventFactory{tenantID: uuid.New(), entityID: uuid.New(), ids: clock.NewSequence()}
}

func (f *eventFactory) periodClosed(t *testing.T, m time.Month) *ledger.PeriodClosedEvent {
	t.Helper()
	start := time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)
	period, err := ledger.NewPeriod(uuid.New(), f.tenantID, f.entityID, start.Format("2006-01"), start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	meta := shared.NewEventMeta(f.ids, clock.Fixed(testNow), f.tenantID, shared.NewOrigin(shared.OriginPeriodClose))
	return ledger.NewPeriodClosedEvent(period, meta)
}
