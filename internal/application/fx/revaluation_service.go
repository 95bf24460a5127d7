package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/application/posting"
	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RevaluationRequest parameters a closing-rate revaluation run
type RevaluationRequest struct {
	TenantID                uuid.UUID              `json:"tenantId" validate:"required"`
	EntityID                uuid.UUID              `json:"entityId" validate:"required"`
	BaseCurrency            valueobject.Currency   `json:"baseCurrency" validate:"required,len=3"`
	CutoffDate              time.Time              `json:"cutoffDate" validate:"required"`
	Currencies              []valueobject.Currency `json:"currencies" validate:"dive,len=3"`
	UnrealizedGainAccountID uuid.UUID              `json:"unrealizedGainAccountId" validate:"required"`
	UnrealizedLossAccountID uuid.UUID              `json:"unrealizedLossAccountId" validate:"required"`
}

// RevaluationLine is the revaluation of one monetary balance
type RevaluationLine struct {
	AccountID         uuid.UUID
	Currency          valueobject.Currency
	BalanceForeign    decimal.Decimal
	BalanceBaseBefore decimal.Decimal
	ClosingRate       decimal.Decimal
	BalanceBaseAfter  decimal.Decimal
	Delta             decimal.Decimal
}

// RevaluationResult is the outcome of a run. RevaluationJournalID is nil when
// there was nothing to post or the journal failed validation.
type RevaluationResult struct {
	RunID                uuid.UUID
	Lines                []RevaluationLine
	TotalGain            decimal.Decimal
	TotalLoss            decimal.Decimal
	MissingRates         []string
	RevaluationJournalID *uuid.UUID
	// Validation is set when the revaluation journal was rejected
	Validation *shared.ValidationReport
}

// RevaluationService revalues foreign-currency monetary balances at closing rates
type RevaluationService struct {
	balances  fx.MonetaryBalanceRepository
	rates     fx.RateRepository
	poster    posting.Poster
	publisher shared.EventPublisher
	ids       shared.IDGenerator
	clock     shared.Clock
	logger    *zap.Logger
	metrics   *telemetry.KernelMetrics
}

// NewRevaluationService creates a revaluation service
func NewRevaluationService(
	balances fx.MonetaryBalanceRepository,
	rates fx.RateRepository,
	poster posting.Poster,
	publisher shared.EventPublisher,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *RevaluationService {
	o := applyOptions(opts)
	return &RevaluationService{
		balances:  balances,
		rates:     rates,
		poster:    poster,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// RunRevaluation revalues every eligible balance and posts all deltas as one
// journal. FX.REVALUATION_RUN is published whether or not a journal was posted.
func (s *RevaluationService) RunRevaluation(ctx context.Context, req RevaluationRequest) (result *RevaluationResult, err error) {
	if report := shared.ValidateStruct(req); !report.IsValid() {
		return nil, fmt.Errorf("%w: revaluation request: %v", shared.ErrInvalidInput, report.Codes())
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "fx", "run_revaluation",
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.String("base_currency", req.BaseCurrency.String()),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "run_revaluation", started, err)
		span.End()
	}()

	cutoff := shared.DateOf(req.CutoffDate)
	balances, err := s.balances.ListMonetaryBalances(ctx, req.TenantID, req.EntityID, cutoff, req.Currencies)
	if err != nil {
		return nil, fmt.Errorf("failed to list monetary balances: %w", err)
	}

	result = &RevaluationResult{
		RunID:        s.ids.Generate(),
		Lines:        make([]RevaluationLine, 0),
		TotalGain:    decimal.Zero,
		TotalLoss:    decimal.Zero,
		MissingRates: make([]string, 0),
	}
	draft := ledger.JournalDraft{
		TenantID:    req.TenantID,
		EntityID:    req.EntityID,
		JournalDate: cutoff,
		Currency:    req.BaseCurrency,
		Reference:   "FX-REVAL-" + cutoff.Format("20060102"),
		Memo:        "Unrealised FX revaluation at " + cutoff.Format("2006-01-02"),
		Origin:      shared.NewOrigin(shared.OriginFXRevaluation),
	}

	missing := make(map[string]bool)
	for _, b := range balances {
		if !b.Revaluable(req.BaseCurrency) {
			continue
		}
		rate, err := s.closingRate(ctx, req.TenantID, b.Currency, req.BaseCurrency, cutoff)
		if errors.Is(err, shared.ErrNotFound) {
			pair := b.Currency.String() + "/" + req.BaseCurrency.String()
			if !missing[pair] {
				missing[pair] = true
				result.MissingRates = append(result.MissingRates, pair)
			}
			s.logger.Warn("No closing rate, account skipped",
				zap.String("account_id", b.AccountID.String()),
				zap.String("pair", pair),
				zap.Time("cutoff", cutoff),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		after, delta := b.Revalue(rate)
		if delta.IsZero() {
			continue
		}
		result.Lines = append(result.Lines, RevaluationLine{
			AccountID:         b.AccountID,
			Currency:          b.Currency,
			BalanceForeign:    b.BalanceForeign,
			BalanceBaseBefore: b.BalanceBaseBefore,
			ClosingRate:       rate,
			BalanceBaseAfter:  after,
			Delta:             delta,
		})
		desc := fmt.Sprintf("Revalue %s %s @ %s", b.BalanceForeign.String(), b.Currency, rate.String())
		if delta.IsPositive() {
			result.TotalGain = result.TotalGain.Add(delta)
			draft.Lines = append(draft.Lines,
				ledger.DebitLine(b.AccountID, delta, desc),
				ledger.CreditLine(req.UnrealizedGainAccountID, delta, desc),
			)
		} else {
			loss := delta.Neg()
			result.TotalLoss = result.TotalLoss.Add(loss)
			draft.Lines = append(draft.Lines,
				ledger.CreditLine(b.AccountID, loss, desc),
				ledger.DebitLine(req.UnrealizedLossAccountID, loss, desc),
			)
		}
	}

	var publishErr error
	if len(draft.Lines) > 0 {
		posted, postErr := s.poster.PostJournal(ctx, draft)
		switch {
		case postErr != nil && posted.Posted():
			publishErr = postErr
		case postErr != nil:
			return nil, fmt.Errorf("failed to post revaluation journal: %w", postErr)
		}
		result.RevaluationJournalID = posted.JournalID()
		if !posted.Posted() {
			report := posted.Validation
			result.Validation = &report
			s.logger.Warn("Revaluation journal rejected",
				zap.String("run_id", result.RunID.String()),
				zap.Strings("codes", report.Codes()),
			)
		}
	}

	s.metrics.RecordRevaluationRun(ctx, req.TenantID, result.RevaluationJournalID != nil)
	s.logger.Info("Revaluation run completed",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("run_id", result.RunID.String()),
		zap.Int("lines", len(result.Lines)),
		zap.String("total_gain", result.TotalGain.String()),
		zap.String("total_loss", result.TotalLoss.String()),
		zap.Strings("missing_rates", result.MissingRates),
	)

	if err := s.publishRun(ctx, req, cutoff, result); err != nil {
		return result, err
	}
	return result, publishErr
}

func (s *RevaluationService) closingRate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, cutoff time.Time) (decimal.Decimal, error) {
	rate, err := s.rates.FindRate(ctx, fx.RateKey{
		TenantID:     tenantID,
		FromCurrency: from,
		ToCurrency:   to,
		RateType:     fx.RateTypeClosing,
		RateDate:     cutoff,
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("failed to find closing rate %s/%s: %w", from, to, err)
	}
	return rate.Rate, nil
}

func (s *RevaluationService) publishRun(ctx context.Context, req RevaluationRequest, cutoff time.Time, result *RevaluationResult) error {
	if s.publisher == nil {
		return nil
	}
	origin := shared.NewOrigin(shared.OriginFXRevaluation)
	event := fx.NewRevaluationRunEvent(result.RunID, req.EntityID, shared.NewEventMeta(s.ids, s.clock, req.TenantID, origin))
	event.BaseCurrency = req.BaseCurrency.String()
	event.CutoffDate = cutoff.Format("2006-01-02")
	event.RevaluationJournalID = result.RevaluationJournalID
	event.LineCount = len(result.Lines)
	event.TotalGain = result.TotalGain
	event.TotalLoss = result.TotalLoss
	event.MissingRates = result.MissingRates

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordEventPublishFailure(ctx, shared.EventTypeRevaluationRun)
		s.logger.Error("Failed to publish revaluation run event",
			zap.String("run_id", result.RunID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: revaluation run %s: %w", shared.ErrEventPublishFailed, result.RunID, err)
	}
	return nil
}
