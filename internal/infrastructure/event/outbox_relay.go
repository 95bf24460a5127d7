package event

import (
	"context"
	"fmt"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxRelay delivers pending outbox entries to downstream consumers and
// marks them sent
type OutboxRelay struct {
	outbox     shared.OutboxRepository
	target     shared.EventPublisher
	serializer *Serializer
	clock      shared.Clock
	batchSize  int
	logger     *zap.Logger
}

// DefaultRelayBatchSize is the number of entries read per batch
const DefaultRelayBatchSize = 100

// NewOutboxRelay creates a relay reading from outbox and publishing to target
func NewOutboxRelay(
	outbox shared.OutboxRepository,
	target shared.EventPublisher,
	serializer *Serializer,
	clock shared.Clock,
	batchSize int,
	logger *zap.Logger,
) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = DefaultRelayBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxRelay{
		outbox:     outbox,
		target:     target,
		serializer: serializer,
		clock:      clock,
		batchSize:  batchSize,
		logger:     logger.Named("outbox_relay"),
	}
}

// Drain relays batches until no pending entries remain and returns the number
// of entries sent. An entry that fails to decode or publish stays pending and
// stops the drain.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		n, err := r.relayBatch(ctx)
		sent += n
		if err != nil {
			return sent, err
		}
		if n < r.batchSize {
			return sent, nil
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) (int, error) {
	entries, err := r.outbox.FindPending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find pending outbox entries: %w", err)
	}

	delivered := make([]uuid.UUID, 0, len(entries))
	var relayErr error
	for _, entry := range entries {
		if relayErr = r.relay(ctx, entry); relayErr != nil {
			r.logger.Error("Failed to relay outbox entry",
				zap.String("entry_id", entry.ID.String()),
				zap.String("event_type", entry.EventType),
				zap.Error(relayErr),
			)
			break
		}
		delivered = append(delivered, entry.ID)
	}

	if err := r.outbox.MarkSent(ctx, delivered, r.clock.Now()); err != nil {
		return 0, fmt.Errorf("failed to mark outbox entries sent: %w", err)
	}
	if len(delivered) > 0 {
		r.logger.Info("Outbox entries relayed", zap.Int("count", len(delivered)))
	}
	if relayErr != nil {
		return len(delivered), relayErr
	}
	return len(delivered), nil
}

func (r *OutboxRelay) relay(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := r.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return r.target.Publish(ctx, event)
}
