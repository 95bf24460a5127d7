package event

import (
	"context"
	"fmt"

	"github.com/erp/kernel/internal/domain/shared"
	"go.uber.org/zap"
)

// KernelPublisher is the kernel's event publisher port over an event bus.
// It refuses events the serializer cannot encode and reports any delivery
// failure as shared.ErrEventPublishFailed.
type KernelPublisher struct {
	bus        shared.EventPublisher
	serializer *Serializer
	logger     *zap.Logger
}

// NewKernelPublisher creates a publisher over bus
func NewKernelPublisher(bus shared.EventPublisher, serializer *Serializer, logger *zap.Logger) *KernelPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KernelPublisher{bus: bus, serializer: serializer, logger: logger}
}

// Publish delivers the events to the bus
func (p *KernelPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if !p.serializer.IsRegistered(e.EventType()) {
			return fmt.Errorf("%w: unregistered event type %s", shared.ErrEventPublishFailed, e.EventType())
		}
	}
	if err := p.bus.Publish(ctx, events...); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrEventPublishFailed, err)
	}
	for _, e := range events {
		fields := []zap.Field{
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_id", e.AggregateID().String()),
		}
		if v, ok := e.(shared.VersionedEvent); ok {
			fields = append(fields, zap.Int("payload_version", v.PayloadVersion()), zap.String("origin", v.Origin().Cell))
		}
		p.logger.Debug("Event published", fields...)
	}
	return nil
}

var _ shared.EventPublisher = (*KernelPublisher)(nil)
