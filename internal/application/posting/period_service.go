package posting

import (
	"context"
	"fmt"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodService runs the closing transitions of accounting periods
type PeriodService struct {
	periods   ledger.PeriodRepository
	publisher shared.EventPublisher
	ids       shared.IDGenerator
	clock     shared.Clock
	logger    *zap.Logger
}

// NewPeriodService creates a period service
func NewPeriodService(
	periods ledger.PeriodRepository,
	publisher shared.EventPublisher,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *PeriodService {
	o := applyOptions(opts)
	return &PeriodService{
		periods:   periods,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		logger:    o.logger,
	}
}

// ClosePeriod moves an OPEN period to CLOSED and publishes GL.PERIOD_CLOSED.
// A publish failure returns the closed period with an error wrapping shared.ErrEventPublishFailed.
func (s *PeriodService) ClosePeriod(ctx context.Context, tenantID, periodID uuid.UUID) (*ledger.Period, error) {
	period, err := s.periods.FindByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if err := period.Close(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	s.logger.Info("Period closed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period_id", period.ID.String()),
		zap.String("code", period.Code),
	)

	if s.publisher == nil {
		return period, nil
	}
	meta := shared.NewEventMeta(s.ids, s.clock, tenantID, shared.NewOrigin(shared.OriginPeriodClose))
	if err := s.publisher.Publish(ctx, ledger.NewPeriodClosedEvent(period, meta)); err != nil {
		s.logger.Error("Failed to publish period closed event", zap.String("period_id", period.ID.String()), zap.Error(err))
		return period, fmt.Errorf("%w: period %s: %w", shared.ErrEventPublishFailed, period.ID, err)
	}
	return period, nil
}

// LockPeriod moves a CLOSED period to LOCKED
func (s *PeriodService) LockPeriod(ctx context.Context, tenantID, periodID uuid.UUID) (*ledger.Period, error) {
	period, err := s.periods.FindByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if err := period.Lock(); err != nil {
		return nil, err
	}
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	s.logger.Info("Period locked", zap.String("period_id", period.ID.String()))
	return period, nil
}
