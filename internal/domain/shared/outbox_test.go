package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEntry(t *testing.T) {
	now := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	meta := EventMeta{ID: uuid.New(), OccurredAt: now, TenantID: uuid.New(), Origin: NewOrigin(OriginPeriodClose)}
	event := NewVersionedBaseDomainEvent(EventTypePeriodClosed, "Period", uuid.New(), meta, 2)
	id := uuid.New()

	entry := NewOutboxEntry(id, &event, []byte(`{"id":"x"}`), now)

	assert.Equal(t, id, entry.ID)
	assert.Equal(t, meta.TenantID, entry.TenantID)
	assert.Equal(t, meta.ID, entry.EventID)
	assert.Equal(t, EventTypePeriodClosed, entry.EventType)
	assert.Equal(t, 2, entry.PayloadVersion)
	assert.Equal(t, OriginPeriodClose, entry.OriginCell)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, now, entry.CreatedAt)
	assert.Nil(t, entry.SentAt)
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	at := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusPending}
	require.NoError(t, entry.MarkSent(at))
	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.SentAt)
	assert.Equal(t, at, *entry.SentAt)

	err := entry.MarkSent(at)
	assert.ErrorIs(t, err, ErrInvalidState)
}
