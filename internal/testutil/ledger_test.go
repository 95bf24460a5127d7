package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger(t *testing.T) {
	l := NewLedger(t)

	require.Len(t, l.Periods, 12)
	assert.Equal(t, Date(2024, 2, 29), l.Period(time.February).EndDate)

	p, err := l.Store.Periods().FindByDate(context.Background(), l.TenantID, l.EntityID, Date(2024, 7, 15))
	require.NoError(t, err)
	assert.Equal(t, "2024-07", p.Code)

	l.ClosePeriod(t, time.July)
	p, err = l.Store.Periods().FindByID(context.Background(), l.TenantID, l.Period(time.July).ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PeriodStatusClosed, p.Status)
}

func TestRecordingPublisher(t *testing.T) {
	pub := NewRecordingPublisher()
	l := NewLedger(t)
	meta := shared.NewEventMeta(l.IDs, l.Clock, l.TenantID, shared.NewOrigin(shared.OriginPeriodClose))
	event := ledger.NewPeriodClosedEvent(l.Period(time.January), meta)

	require.NoError(t, pub.Publish(context.Background(), event))
	assert.Len(t, pub.EventsOfType(shared.EventTypePeriodClosed), 1)

	pub.SetError(errors.New("broker down"))
	assert.Error(t, pub.Publish(context.Background(), event))
	assert.Len(t, pub.Events(), 1)
}
