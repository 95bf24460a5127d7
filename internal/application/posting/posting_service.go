package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result is the outcome of a posting attempt. Journal is nil whenever the
// validation report carries an ERROR.
type Result struct {
	Journal    *ledger.JournalEntry
	Validation shared.ValidationReport
}

// Posted returns true if a journal was committed
func (r *Result) Posted() bool {
	return r != nil && r.Journal != nil
}

// JournalID returns the committed journal id, or nil
func (r *Result) JournalID() *uuid.UUID {
	if !r.Posted() {
		return nil
	}
	id := r.Journal.ID
	return &id
}

// Poster is the entry point other kernel modules use to touch the ledger
type Poster interface {
	PostJournal(ctx context.Context, draft ledger.JournalDraft) (*Result, error)
}

// Service validates journal drafts and commits the valid ones. It is the only
// writer of journal entries.
type Service struct {
	accounts  ledger.AccountRepository
	periods   ledger.PeriodRepository
	journals  ledger.JournalRepository
	publisher shared.EventPublisher
	ids       shared.IDGenerator
	clock     shared.Clock
	logger    *zap.Logger
	metrics   *telemetry.KernelMetrics
}

// Option configures optional collaborators of the services in this package
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *telemetry.KernelMetrics
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the kernel metrics recorder
func WithMetrics(metrics *telemetry.KernelMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// NewService creates a posting service
func NewService(
	accounts ledger.AccountRepository,
	periods ledger.PeriodRepository,
	journals ledger.JournalRepository,
	publisher shared.EventPublisher,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *Service {
	o := applyOptions(opts)
	return &Service{
		accounts:  accounts,
		periods:   periods,
		journals:  journals,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// ValidateJournalDraft runs every posting check without writing anything
func (s *Service) ValidateJournalDraft(ctx context.Context, draft ledger.JournalDraft) (shared.ValidationReport, error) {
	report, _, err := s.validate(ctx, draft)
	return report, err
}

// PostJournal validates the draft and, when no ERROR is reported, persists it
// as a POSTED entry and publishes GL.JOURNAL_POSTED.
//
// A publish failure after persistence returns the committed journal together
// with an error wrapping shared.ErrEventPublishFailed; the journal stays posted.
func (s *Service) PostJournal(ctx context.Context, draft ledger.JournalDraft) (result *Result, err error) {
	if draft.Origin.IsZero() {
		draft.Origin = shared.NewOrigin(shared.OriginPosting)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "posting", "post_journal",
		attribute.String("tenant_id", draft.TenantID.String()),
		attribute.String("origin", draft.Origin.Cell),
		attribute.Int("lines", len(draft.Lines)),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "post_journal", started, err)
		span.End()
	}()

	report, period, err := s.validate(ctx, draft)
	if err != nil {
		return nil, err
	}
	if !report.IsValid() {
		s.metrics.RecordJournalRejected(ctx, draft.TenantID, draft.Origin.Cell)
		s.logger.Info("Journal draft rejected",
			zap.String("tenant_id", draft.TenantID.String()),
			zap.String("origin", draft.Origin.Cell),
			zap.String("reference", draft.Reference),
			zap.Strings("codes", report.Codes()),
		)
		return &Result{Validation: report}, nil
	}

	journal := ledger.NewPostedJournal(s.ids.Generate(), period.ID, s.clock.Now(), draft)
	if err := s.journals.SavePosted(ctx, journal); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	s.metrics.RecordJournalPosted(ctx, journal.TenantID, journal.Origin.Cell)
	s.logger.Info("Journal posted",
		zap.String("tenant_id", journal.TenantID.String()),
		zap.String("journal_id", journal.ID.String()),
		zap.String("period_id", journal.PeriodID.String()),
		zap.String("origin", journal.Origin.Cell),
		zap.String("total", journal.TotalDebit().String()),
	)

	result = &Result{Journal: journal, Validation: report}
	if s.publisher == nil {
		return result, nil
	}
	event := ledger.NewJournalPostedEvent(journal, shared.NewEventMeta(s.ids, s.clock, journal.TenantID, journal.Origin))
	if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
		s.metrics.RecordEventPublishFailure(ctx, shared.EventTypeJournalPosted)
		s.logger.Error("Failed to publish journal posted event",
			zap.String("journal_id", journal.ID.String()),
			zap.Error(pubErr),
		)
		return result, fmt.Errorf("%w: journal %s: %w", shared.ErrEventPublishFailed, journal.ID, pubErr)
	}
	return result, nil
}

// validate accumulates every finding; only infrastructure failures are returned as errors.
func (s *Service) validate(ctx context.Context, draft ledger.JournalDraft) (shared.ValidationReport, *ledger.Period, error) {
	report := shared.NewValidationReport()

	if len(draft.Lines) == 0 {
		report.AddError(ledger.CodeEmptyLines, ledger.PathLines, "Journal must have at least one line")
	}

	accounts := make(map[uuid.UUID]*ledger.Account)
	for i, line := range draft.Lines {
		s.checkLineAmounts(&report, i, line)
		if err := s.checkLineAccount(ctx, &report, i, line, draft.TenantID, accounts); err != nil {
			return report, nil, err
		}
	}

	if !draft.IsBalanced() {
		report.AddError(ledger.CodeImbalanced, ledger.PathLines,
			"Total debit %s does not equal total credit %s",
			draft.TotalDebit().String(), draft.TotalCredit().String())
	}

	period, err := s.periods.FindByDate(ctx, draft.TenantID, draft.EntityID, draft.JournalDate)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		report.AddError(ledger.CodePeriodNotFound, ledger.PathJournalDate,
			"No accounting period contains %s", draft.JournalDate.Format("2006-01-02"))
		period = nil
	case err != nil:
		return report, nil, fmt.Errorf("failed to find period: %w", err)
	case !period.IsOpen():
		report.AddError(ledger.CodePeriodNotOpen, ledger.PathJournalDate,
			"Period %s is %s", period.Code, period.Status)
	}

	return report, period, nil
}

func (s *Service) checkLineAmounts(report *shared.ValidationReport, i int, line ledger.JournalLineDraft) {
	if line.Debit.IsNegative() {
		report.AddError(ledger.CodeLineNegativeAmount, ledger.LinePath(i, "debit"), "Debit amount cannot be negative")
	}
	if line.Credit.IsNegative() {
		report.AddError(ledger.CodeLineNegativeAmount, ledger.LinePath(i, "credit"), "Credit amount cannot be negative")
	}
	switch {
	case !line.Debit.IsZero() && !line.Credit.IsZero():
		report.AddError(ledger.CodeLineBothDebitCredit, ledger.LinePath(i, "amount"), "Line cannot carry both a debit and a credit")
	case line.Debit.IsZero() && line.Credit.IsZero():
		report.AddError(ledger.CodeLineNoAmount, ledger.LinePath(i, "amount"), "Line must carry a debit or a credit")
	}
}

func (s *Service) checkLineAccount(
	ctx context.Context,
	report *shared.ValidationReport,
	i int,
	line ledger.JournalLineDraft,
	tenantID uuid.UUID,
	seen map[uuid.UUID]*ledger.Account,
) error {
	account, cached := seen[line.AccountID]
	if !cached {
		var err error
		account, err = s.accounts.FindByID(ctx, tenantID, line.AccountID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to find account %s: %w", line.AccountID, err)
		}
		if err != nil {
			account = nil
		}
		seen[line.AccountID] = account
	}

	path := ledger.LinePath(i, "accountId")
	if account == nil {
		report.AddError(ledger.CodeAccountNotFound, path, "Account %s not found", line.AccountID)
		return nil
	}
	if !account.IsPostingAllowed {
		report.AddError(ledger.CodeAccountNotPosting, path, "Account %s does not allow posting", account.Code)
	}
	return nil
}
