package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/application/posting"
	"github.com/erp/kernel/internal/domain/asset"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RegistrationResult carries the registered asset and its schedule, or the
// validation report when the draft was rejected
type RegistrationResult struct {
	Asset      *asset.Asset
	Schedule   []asset.ScheduleLine
	Validation shared.ValidationReport
}

// PostedLine is a schedule line realised by a depreciation journal
type PostedLine struct {
	AssetID   uuid.UUID
	LineID    uuid.UUID
	JournalID uuid.UUID
	Amount    decimal.Decimal
}

// FailedLine is a schedule line whose journal was rejected
type FailedLine struct {
	AssetID    uuid.UUID
	LineID     uuid.UUID
	Validation shared.ValidationReport
}

// DepreciationResult summarises a depreciation run for one period
type DepreciationResult struct {
	PeriodID uuid.UUID
	Posted   []PostedLine
	Failed   []FailedLine
	Skipped  int
}

// DisposalRequest describes the disposal of an asset
type DisposalRequest struct {
	TenantID      uuid.UUID       `json:"tenantId" validate:"required"`
	AssetID       uuid.UUID       `json:"assetId" validate:"required"`
	DisposalDate  time.Time       `json:"disposalDate" validate:"required"`
	Proceeds      decimal.Decimal `json:"proceeds" validate:"dec_gte0"`
	GainAccountID uuid.UUID       `json:"gainAccountId" validate:"required"`
	LossAccountID uuid.UUID       `json:"lossAccountId" validate:"required"`
	// ProceedsAccountID adds a debit of the proceeds to a cash or bank account
	ProceedsAccountID *uuid.UUID `json:"proceedsAccountId,omitempty"`
}

// DisposalResult is the valuation at disposal and the journal that booked it
type DisposalResult struct {
	asset.Disposal
	DisposalJournalID *uuid.UUID
	// Validation is set when the disposal journal was rejected
	Validation *shared.ValidationReport
}

// Service runs the asset lifecycle: registration, schedules, depreciation and disposal
type Service struct {
	assets    asset.AssetRepository
	schedules asset.ScheduleRepository
	periods   ledger.PeriodRepository
	poster    posting.Poster
	ids       shared.IDGenerator
	clock     shared.Clock
	logger    *zap.Logger
	metrics   *telemetry.KernelMetrics
}

// NewService creates an asset service
func NewService(
	assets asset.AssetRepository,
	schedules asset.ScheduleRepository,
	periods ledger.PeriodRepository,
	poster posting.Poster,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *Service {
	o := applyOptions(opts)
	return &Service{
		assets:    assets,
		schedules: schedules,
		periods:   periods,
		poster:    poster,
		ids:       ids,
		clock:     clock,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// RegisterAsset validates the draft, stores the asset and generates its schedule.
// An invalid draft returns the report and nil asset; an unsupported
// depreciation method is a fatal error.
func (s *Service) RegisterAsset(ctx context.Context, draft asset.AssetDraft) (*RegistrationResult, error) {
	report := draft.Validate()
	if !report.IsValid() {
		s.logger.Info("Asset draft rejected",
			zap.String("tenant_id", draft.TenantID.String()),
			zap.String("asset_code", draft.AssetCode),
			zap.Strings("codes", report.Codes()),
		)
		return &RegistrationResult{Validation: report}, nil
	}
	method, err := asset.ResolveDepreciationMethod(draft.DepreciationMethod)
	if err != nil {
		return nil, err
	}

	a, err := asset.NewAsset(s.ids.Generate(), s.clock.Now(), draft)
	if err != nil {
		return nil, err
	}
	schedule, err := s.buildSchedule(method, a)
	if err != nil {
		return nil, err
	}
	if err := s.assets.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}
	if err := s.schedules.SaveLines(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save depreciation schedule: %w", err)
	}

	s.logger.Info("Asset registered",
		zap.String("tenant_id", a.TenantID.String()),
		zap.String("asset_id", a.ID.String()),
		zap.String("asset_code", a.AssetCode),
		zap.Int("periods", len(schedule)),
	)
	return &RegistrationResult{Asset: a, Schedule: schedule, Validation: report}, nil
}

// GenerateSchedule returns the asset's schedule, generating and saving it if
// none exists yet. An existing schedule is never regenerated.
func (s *Service) GenerateSchedule(ctx context.Context, tenantID, assetID uuid.UUID) ([]asset.ScheduleLine, error) {
	a, err := s.assets.FindByID(ctx, tenantID, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find asset %s: %w", assetID, err)
	}
	existing, err := s.schedules.FindByAsset(ctx, tenantID, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	method, err := asset.ResolveDepreciationMethod(a.DepreciationMethod)
	if err != nil {
		return nil, err
	}
	schedule, err := s.buildSchedule(method, a)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.SaveLines(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save depreciation schedule: %w", err)
	}
	return schedule, nil
}

func (s *Service) buildSchedule(method asset.DepreciationMethod, a *asset.Asset) ([]asset.ScheduleLine, error) {
	schedule, err := method.Schedule(a)
	if err != nil {
		return nil, err
	}
	for i := range schedule {
		schedule[i].ID = s.ids.Generate()
	}
	return schedule, nil
}

// PostDepreciation posts one journal per unposted schedule line ending inside
// the period. The period must be OPEN. A rejected journal is reported in
// Failed and the run continues with the next line.
func (s *Service) PostDepreciation(ctx context.Context, tenantID, entityID, periodID uuid.UUID) (result *DepreciationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "asset", "post_depreciation",
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("period_id", periodID.String()),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "post_depreciation", started, err)
		span.End()
	}()

	period, err := s.periods.FindByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: %s is %s", shared.ErrPeriodNotOpen, period.Code, period.Status)
	}

	due, err := s.schedules.FindUnpostedDue(ctx, tenantID, entityID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find due schedule lines: %w", err)
	}

	result = &DepreciationResult{PeriodID: periodID, Posted: make([]PostedLine, 0), Failed: make([]FailedLine, 0)}
	assets := make(map[uuid.UUID]*asset.Asset)
	var publishErrs []error
	for _, line := range due {
		if line.IsPosted() || line.DepreciationAmount.IsZero() {
			result.Skipped++
			continue
		}
		a, ok := assets[line.AssetID]
		if !ok {
			a, err = s.assets.FindByID(ctx, tenantID, line.AssetID)
			if err != nil {
				return nil, fmt.Errorf("failed to find asset %s: %w", line.AssetID, err)
			}
			assets[line.AssetID] = a
		}

		draft := depreciationDraft(a, line)
		posted, postErr := s.poster.PostJournal(ctx, draft)
		if postErr != nil && !posted.Posted() {
			return nil, fmt.Errorf("failed to post depreciation for asset %s: %w", a.AssetCode, postErr)
		}
		if postErr != nil {
			publishErrs = append(publishErrs, postErr)
		}
		if !posted.Posted() {
			result.Failed = append(result.Failed, FailedLine{AssetID: a.ID, LineID: line.ID, Validation: posted.Validation})
			s.logger.Warn("Depreciation journal rejected",
				zap.String("asset_id", a.ID.String()),
				zap.Int("period_number", line.PeriodNumber),
				zap.Strings("codes", posted.Validation.Codes()),
			)
			continue
		}
		if err := s.schedules.MarkPosted(ctx, tenantID, line.ID, posted.Journal.ID); err != nil {
			return nil, fmt.Errorf("failed to mark schedule line %s posted: %w", line.ID, err)
		}
		result.Posted = append(result.Posted, PostedLine{
			AssetID:   a.ID,
			LineID:    line.ID,
			JournalID: posted.Journal.ID,
			Amount:    line.DepreciationAmount,
		})
	}

	s.metrics.RecordDepreciationPosted(ctx, tenantID, len(result.Posted), len(result.Failed))
	s.logger.Info("Depreciation run completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period.Code),
		zap.Int("posted", len(result.Posted)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("skipped", result.Skipped),
	)
	return result, errors.Join(publishErrs...)
}

func depreciationDraft(a *asset.Asset, line asset.ScheduleLine) ledger.JournalDraft {
	desc := fmt.Sprintf("Depreciation %s period %d", a.AssetCode, line.PeriodNumber)
	return ledger.JournalDraft{
		TenantID:    a.TenantID,
		EntityID:    a.EntityID,
		JournalDate: line.PeriodEnd,
		Currency:    a.Currency,
		Reference:   fmt.Sprintf("DEP-%s-%03d", a.AssetCode, line.PeriodNumber),
		Memo:        desc,
		Origin:      shared.NewOrigin(shared.OriginAssetDepreciation).WithSource("", a.AssetCode),
		Lines: []ledger.JournalLineDraft{
			ledger.DebitLine(a.DepreciationExpenseAccountID, line.DepreciationAmount, desc),
			ledger.CreditLine(a.AccumulatedDepreciationAccountID, line.DepreciationAmount, desc),
		},
	}
}

// DisposeAsset values the asset at the disposal date and books the disposal
// journal. A rejected journal leaves DisposalJournalID nil and carries the report.
func (s *Service) DisposeAsset(ctx context.Context, req DisposalRequest) (*DisposalResult, error) {
	if report := shared.ValidateStruct(req); !report.IsValid() {
		return nil, fmt.Errorf("%w: disposal request: %v", shared.ErrInvalidInput, report.Codes())
	}
	a, err := s.assets.FindByID(ctx, req.TenantID, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find asset %s: %w", req.AssetID, err)
	}
	schedule, err := s.schedules.FindByAsset(ctx, req.TenantID, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	disposal := asset.ValueDisposal(a, schedule, req.DisposalDate, req.Proceeds)
	result := &DisposalResult{Disposal: disposal}

	posted, postErr := s.poster.PostJournal(ctx, disposalDraft(a, req, disposal))
	if postErr != nil && !posted.Posted() {
		return nil, fmt.Errorf("failed to post disposal of asset %s: %w", a.AssetCode, postErr)
	}
	result.DisposalJournalID = posted.JournalID()
	if !posted.Posted() {
		report := posted.Validation
		result.Validation = &report
	}

	s.logger.Info("Asset disposed",
		zap.String("tenant_id", a.TenantID.String()),
		zap.String("asset_id", a.ID.String()),
		zap.String("nbv", disposal.NetBookValue.String()),
		zap.String("gain_loss", disposal.GainLoss.String()),
		zap.Bool("posted", result.DisposalJournalID != nil),
	)
	return result, postErr
}

func disposalDraft(a *asset.Asset, req DisposalRequest, disposal asset.Disposal) ledger.JournalDraft {
	desc := "Disposal of " + a.AssetCode
	lines := []ledger.JournalLineDraft{
		ledger.CreditLine(a.AssetAccountID, a.Cost, desc),
	}
	if !disposal.AccumulatedDepreciation.IsZero() {
		lines = append(lines, ledger.DebitLine(a.AccumulatedDepreciationAccountID, disposal.AccumulatedDepreciation, desc))
	}
	if req.ProceedsAccountID != nil && req.Proceeds.IsPositive() {
		lines = append(lines, ledger.DebitLine(*req.ProceedsAccountID, req.Proceeds, desc))
	}
	switch {
	case disposal.GainLoss.IsPositive():
		lines = append(lines, ledger.CreditLine(req.GainAccountID, disposal.GainLoss, desc))
	case disposal.GainLoss.IsNegative():
		lines = append(lines, ledger.DebitLine(req.LossAccountID, disposal.GainLoss.Neg(), desc))
	}
	return ledger.JournalDraft{
		TenantID:    a.TenantID,
		EntityID:    a.EntityID,
		JournalDate: shared.DateOf(req.DisposalDate),
		Currency:    a.Currency,
		Reference:   "DISP-" + a.AssetCode,
		Memo:        desc,
		Origin:      shared.NewOrigin(shared.OriginAssetDisposal).WithSource("", a.AssetCode),
		Lines:       lines,
	}
}
