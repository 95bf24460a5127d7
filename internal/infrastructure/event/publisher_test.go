package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKernelPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	f := newEventFactory()

	t.Run("delivers registered events and logs them", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		bus := NewInMemoryEventBus(nil)
		h := &recordingHandler{}
		bus.Subscribe(h)
		p := NewKernelPublisher(bus, NewKernelSerializer(), zap.New(core))

		require.NoError(t, p.Publish(ctx, f.periodClosed(t, time.January)))

		assert.Equal(t, 1, h.count())
		entries := logs.FilterMessage("Event published").All()
		require.Len(t, entries, 1)
		assert.Equal(t, shared.EventTypePeriodClosed, entries[0].ContextMap()["event_type"])
		assert.Equal(t, shared.OriginPeriodClose, entries[0].ContextMap()["origin"])
	})

	t.Run("refuses unregistered event types before delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := &recordingHandler{}
		bus.Subscribe(h)
		p := NewKernelPublisher(bus, NewSerializer(), nil)

		err := p.Publish(ctx, f.periodClosed(t, time.February))

		assert.ErrorIs(t, err, shared.ErrEventPublishFailed)
		assert.Equal(t, 0, h.count())
	})

	t.Run("wraps delivery failures", func(t *testing.T) {
		boom := errors.New("broker down")
		bus := NewInMemoryEventBus(nil)
		bus.Subscribe(&recordingHandler{err: boom})
		p := NewKernelPublisher(bus, NewKernelSerializer(), nil)

		err := p.Publish(ctx, f.periodClosed(t, time.March))

		assert.ErrorIs(t, err, shared.ErrEventPublishFailed)
		assert.ErrorIs(t, err, boom)
	})
}
