package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpsertRateRequest carries one exchange rate
type UpsertRateRequest struct {
	FromCurrency valueobject.Currency
	ToCurrency   valueobject.Currency
	RateType     fx.RateType
	RateDate     time.Time
	Rate         decimal.Decimal
	Source       string
}

// RateService maintains exchange rates
type RateService struct {
	rates  fx.RateRepository
	logger *zap.Logger
}

// NewRateService creates a rate service
func NewRateService(rates fx.RateRepository, opts ...Option) *RateService {
	o := applyOptions(opts)
	return &RateService{rates: rates, logger: o.logger}
}

// UpsertRate stores the rate under its (from, to, type, date) key, replacing
// any previous value. Repeating the same request leaves one rate.
func (s *RateService) UpsertRate(ctx context.Context, tenantID uuid.UUID, req UpsertRateRequest) (*fx.Rate, error) {
	from, err := valueobject.NewCurrency(req.FromCurrency.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	to, err := valueobject.NewCurrency(req.ToCurrency.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	rate, err := fx.NewRate(fx.RateKey{
		TenantID:     tenantID,
		FromCurrency: from,
		ToCurrency:   to,
		RateType:     req.RateType,
		RateDate:     req.RateDate,
	}, req.Rate, req.Source)
	if err != nil {
		return nil, err
	}
	if err := s.rates.UpsertRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to upsert rate: %w", err)
	}
	s.logger.Info("Exchange rate stored",
		zap.String("tenant_id", tenantID.String()),
		zap.String("pair", from.String()+"/"+to.String()),
		zap.String("type", string(rate.RateType)),
		zap.Time("date", rate.RateDate),
		zap.String("rate", rate.Rate.String()),
	)
	return rate, nil
}

// GetRate returns the rate stored under the exact key
func (s *RateService) GetRate(ctx context.Context, key fx.RateKey) (*fx.Rate, error) {
	return s.rates.FindRate(ctx, key.Normalized())
}
