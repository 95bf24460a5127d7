package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/event"
	"github.com/erp/kernel/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func outboxCommand(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || args[0] != "drain" {
		return fmt.Errorf("%w: outbox drain [-batch n]", errUsage)
	}
	fs := newFlagSet("outbox drain")
	batch := fs.Int("batch", event.DefaultRelayBatchSize, "Entries read per batch")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	ctx = a.runContext(ctx, "outbox")
	db, err := a.database(ctx)
	if err != nil {
		return err
	}

	bus := event.NewInMemoryEventBus(logger.L(ctx))
	bus.Subscribe(&eventPrinter{w: a.stdout})
	relay := event.NewOutboxRelay(event.NewGormOutboxRepository(db.DB), bus, a.serializer, a.clock, *batch, logger.L(ctx))

	sent, err := relay.Drain(ctx)
	logger.L(ctx).Info("Outbox drained", zap.Int("sent", sent))
	return err
}

// eventPrinter writes every relayed event to w as one JSON line
type eventPrinter struct {
	w io.Writer
}

type printedEvent struct {
	EventID     uuid.UUID `json:"eventId"`
	EventType   string    `json:"eventType"`
	TenantID    uuid.UUID `json:"tenantId"`
	AggregateID uuid.UUID `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Event       any       `json:"event"`
}

func (p *eventPrinter) EventTypes() []string {
	return nil
}

func (p *eventPrinter) Handle(_ context.Context, e shared.DomainEvent) error {
	return json.NewEncoder(p.w).Encode(printedEvent{
		EventID:     e.EventID(),
		EventType:   e.EventType(),
		TenantID:    e.TenantID(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Event:       e,
	})
}
