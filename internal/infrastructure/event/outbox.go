package event

import (
	"context"
	"fmt"

	"github.com/erp/kernel/internal/domain/shared"
)

// OutboxRecorder is a wildcard handler that stores every event it receives in
// the outbox, so events commit together with the records they describe
type OutboxRecorder struct {
	outbox     shared.OutboxRepository
	serializer *Serializer
	ids        shared.IDGenerator
	clock      shared.Clock
}

// NewOutboxRecorder creates a recorder writing to outbox
func NewOutboxRecorder(outbox shared.OutboxRepository, serializer *Serializer, ids shared.IDGenerator, clock shared.Clock) *OutboxRecorder {
	return &OutboxRecorder{outbox: outbox, serializer: serializer, ids: ids, clock: clock}
}

// EventTypes subscribes the recorder to every event
func (r *OutboxRecorder) EventTypes() []string {
	return nil
}

// Handle serializes the event and saves it as a pending outbox entry
func (r *OutboxRecorder) Handle(ctx context.Context, e shared.DomainEvent) error {
	payload, err := r.serializer.Serialize(e)
	if err != nil {
		return err
	}
	entry := shared.NewOutboxEntry(r.ids.Generate(), e, payload, r.clock.Now())
	if err := r.outbox.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save outbox entry: %w", err)
	}
	return nil
}

var _ shared.EventHandler = (*OutboxRecorder)(nil)
