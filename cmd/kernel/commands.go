package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	assetapp "github.com/erp/kernel/internal/application/asset"
	fxapp "github.com/erp/kernel/internal/application/fx"
	"github.com/erp/kernel/internal/application/posting"
	subledgerapp "github.com/erp/kernel/internal/application/subledger"
	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var errJournalRejected = errors.New("journal rejected")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func parseUUID(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: -%s: %v", shared.ErrInvalidInput, name, err)
	}
	return id, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: -%s must be YYYY-MM-DD: %v", shared.ErrInvalidInput, name, err)
	}
	return t, nil
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: -%s is required", errUsage, name)
	}
	d, err := valueobject.DecimalString(value).Decimal()
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: -%s: %v", shared.ErrInvalidInput, name, err)
	}
	return d, nil
}

// configUUID parses an account id taken from configuration
func configUUID(key, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is not configured", shared.ErrInvalidInput, key)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, key, err)
	}
	return id, nil
}

func parseSubLedgerType(value string) (subledger.Type, error) {
	typ := subledger.Type(strings.ToUpper(value))
	if !subledger.ValidType(typ) {
		return "", fmt.Errorf("%w: -type must be AR or AP, got %q", errUsage, value)
	}
	return typ, nil
}

func (a *app) poster(tx *kernelTx) *posting.Service {
	return posting.NewService(tx.Accounts(), tx.Periods(), tx.Journals(), tx.publisher, a.ids, a.clock,
		posting.WithLogger(a.log), posting.WithMetrics(a.metrics))
}

func closePeriodCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("close-period")
	tenant := fs.String("tenant", "", "Tenant ID")
	periodFlag := fs.String("period", "", "Period ID")
	lock := fs.Bool("lock", false, "Lock the period instead of closing it")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	periodID, err := parseUUID("period", *periodFlag)
	if err != nil {
		return err
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var period *ledger.Period
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := posting.NewPeriodService(tx.Periods(), tx.publisher, a.ids, a.clock, posting.WithLogger(a.log))
		var err error
		if *lock {
			period, err = svc.LockPeriod(ctx, tenantID, periodID)
		} else {
			period, err = svc.ClosePeriod(ctx, tenantID, periodID)
		}
		return err
	})
	if err != nil {
		return err
	}
	logger.L(ctx).Info("Period transitioned", zap.String("period", period.Code), zap.String("status", string(period.Status)))
	return a.printJSON(period)
}

func depreciateCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("depreciate")
	tenant := fs.String("tenant", "", "Tenant ID")
	entity := fs.String("entity", "", "Entity ID")
	periodFlag := fs.String("period", "", "Period ID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	entityID, err := parseUUID("entity", *entity)
	if err != nil {
		return err
	}
	periodID, err := parseUUID("period", *periodFlag)
	if err != nil {
		return err
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var result *assetapp.DepreciationResult
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := assetapp.NewService(tx.Assets(), tx.Schedules(), tx.Periods(), a.poster(tx), a.ids, a.clock,
			assetapp.WithLogger(a.log), assetapp.WithMetrics(a.metrics))
		var err error
		result, err = svc.PostDepreciation(ctx, tenantID, entityID, periodID)
		return err
	})
	if err != nil {
		return err
	}
	if err := a.printJSON(result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%w: %d depreciation lines failed", errJournalRejected, len(result.Failed))
	}
	return nil
}

func disposeCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dispose")
	tenant := fs.String("tenant", "", "Tenant ID")
	assetFlag := fs.String("asset", "", "Asset ID")
	date := fs.String("date", "", "Disposal date (YYYY-MM-DD)")
	proceeds := fs.String("proceeds", "", "Disposal proceeds")
	proceedsAccount := fs.String("proceeds-account", a.cfg.Assets.ProceedsAccountID, "Account debited with the proceeds")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	assetID, err := parseUUID("asset", *assetFlag)
	if err != nil {
		return err
	}
	disposalDate, err := parseDate("date", *date)
	if err != nil {
		return err
	}
	amount, err := parseDecimal("proceeds", *proceeds)
	if err != nil {
		return err
	}
	gainAccount, err := configUUID("assets.disposal_gain_account_id", a.cfg.Assets.DisposalGainAccountID)
	if err != nil {
		return err
	}
	lossAccount, err := configUUID("assets.disposal_loss_account_id", a.cfg.Assets.DisposalLossAccountID)
	if err != nil {
		return err
	}
	req := assetapp.DisposalRequest{
		TenantID:      tenantID,
		AssetID:       assetID,
		DisposalDate:  disposalDate,
		Proceeds:      amount,
		GainAccountID: gainAccount,
		LossAccountID: lossAccount,
	}
	if *proceedsAccount != "" {
		id, err := parseUUID("proceeds-account", *proceedsAccount)
		if err != nil {
			return err
		}
		req.ProceedsAccountID = &id
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var result *assetapp.DisposalResult
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := assetapp.NewService(tx.Assets(), tx.Schedules(), tx.Periods(), a.poster(tx), a.ids, a.clock,
			assetapp.WithLogger(a.log), assetapp.WithMetrics(a.metrics))
		var err error
		result, err = svc.DisposeAsset(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	if err := a.printJSON(result); err != nil {
		return err
	}
	if result.Validation != nil {
		return fmt.Errorf("%w: %v", errJournalRejected, result.Validation.Codes())
	}
	return nil
}

func rateCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("rate")
	tenant := fs.String("tenant", "", "Tenant ID")
	from := fs.String("from", "", "Foreign currency")
	to := fs.String("to", a.cfg.Ledger.BaseCurrency, "Quote currency")
	rateType := fs.String("type", string(fx.RateTypeClosing), "Rate type (SPOT, CLOSING, AVERAGE)")
	date := fs.String("date", "", "Rate date (YYYY-MM-DD)")
	value := fs.String("rate", "", "Units of the quote currency per unit of the foreign currency")
	source := fs.String("source", "manual", "Rate source")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	if *from == "" {
		return fmt.Errorf("%w: -from is required", errUsage)
	}
	rateDate, err := parseDate("date", *date)
	if err != nil {
		return err
	}
	rate, err := parseDecimal("rate", *value)
	if err != nil {
		return err
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var stored *fx.Rate
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := fxapp.NewRateService(tx.rates, fxapp.WithLogger(a.log))
		var err error
		stored, err = svc.UpsertRate(ctx, tenantID, fxapp.UpsertRateRequest{
			FromCurrency: valueobject.Currency(strings.ToUpper(*from)),
			ToCurrency:   valueobject.Currency(strings.ToUpper(*to)),
			RateType:     fx.RateType(strings.ToUpper(*rateType)),
			RateDate:     rateDate,
			Rate:         rate,
			Source:       *source,
		})
		return err
	})
	if err != nil {
		return err
	}
	return a.printJSON(stored)
}

func revalueCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("revalue")
	tenant := fs.String("tenant", "", "Tenant ID")
	entity := fs.String("entity", "", "Entity ID")
	cutoff := fs.String("cutoff", "", "Cutoff date (YYYY-MM-DD)")
	currencies := fs.String("currencies", strings.Join(a.cfg.FX.Currencies, ","), "Comma separated currencies to revalue (empty: all)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	entityID, err := parseUUID("entity", *entity)
	if err != nil {
		return err
	}
	cutoffDate, err := parseDate("cutoff", *cutoff)
	if err != nil {
		return err
	}
	gainAccount, err := configUUID("fx.unrealized_gain_account_id", a.cfg.FX.UnrealizedGainAccountID)
	if err != nil {
		return err
	}
	lossAccount, err := configUUID("fx.unrealized_loss_account_id", a.cfg.FX.UnrealizedLossAccountID)
	if err != nil {
		return err
	}
	req := fxapp.RevaluationRequest{
		TenantID:                tenantID,
		EntityID:                entityID,
		BaseCurrency:            valueobject.Currency(a.cfg.Ledger.BaseCurrency),
		CutoffDate:              cutoffDate,
		UnrealizedGainAccountID: gainAccount,
		UnrealizedLossAccountID: lossAccount,
	}
	for _, code := range strings.Split(*currencies, ",") {
		if code = strings.TrimSpace(code); code == "" {
			continue
		}
		currency, err := valueobject.NewCurrency(code)
		if err != nil {
			return fmt.Errorf("%w: -currencies: %w", shared.ErrInvalidInput, err)
		}
		req.Currencies = append(req.Currencies, currency)
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var result *fxapp.RevaluationResult
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := fxapp.NewRevaluationService(tx.MonetaryBalances(), tx.rates, a.poster(tx), tx.publisher, a.ids, a.clock,
			fxapp.WithLogger(a.log), fxapp.WithMetrics(a.metrics))
		var err error
		result, err = svc.RunRevaluation(ctx, req)
		return err
	})
	if err != nil {
		return err
	}
	if err := a.printJSON(result); err != nil {
		return err
	}
	if result.Validation != nil {
		return fmt.Errorf("%w: %v", errJournalRejected, result.Validation.Codes())
	}
	return nil
}

func reconcileCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("reconcile")
	tenant := fs.String("tenant", "", "Tenant ID")
	typeFlag := fs.String("type", "", "Sub-ledger type (AR or AP)")
	asOf := fs.String("as-of", "", "As-of date (YYYY-MM-DD)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	typ, err := parseSubLedgerType(*typeFlag)
	if err != nil {
		return err
	}
	asOfDate, err := parseDate("as-of", *asOf)
	if err != nil {
		return err
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var result *subledger.Reconciliation
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := subledgerapp.NewReconciliationService(tx.ControlBalances(), tx.Invoices(),
			subledgerapp.WithLogger(a.log), subledgerapp.WithMetrics(a.metrics))
		var err error
		result, err = svc.ReconcileControlAccounts(ctx, tenantID, typ, asOfDate)
		return err
	})
	if err != nil {
		return err
	}
	return a.printJSON(result)
}

func agingCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("aging")
	tenant := fs.String("tenant", "", "Tenant ID")
	typeFlag := fs.String("type", "", "Sub-ledger type (AR or AP)")
	asOf := fs.String("as-of", "", "As-of date (YYYY-MM-DD)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tenantID, err := parseUUID("tenant", *tenant)
	if err != nil {
		return err
	}
	typ, err := parseSubLedgerType(*typeFlag)
	if err != nil {
		return err
	}
	asOfDate, err := parseDate("as-of", *asOf)
	if err != nil {
		return err
	}

	ctx = logger.WithTenant(a.runContext(ctx, fs.Name()), tenantID)
	var summaries []subledger.AgingSummary
	err = a.inTransaction(ctx, func(ctx context.Context, tx *kernelTx) error {
		svc := subledgerapp.NewAgingService(tx.Invoices(),
			subledgerapp.WithLogger(a.log),
			subledgerapp.WithMetrics(a.metrics),
			subledgerapp.WithDefaultBuckets(subledger.BucketsFromBoundaries(a.cfg.Subledger.AgingBucketDays)),
		)
		var err error
		summaries, err = svc.GetAgingSummary(ctx, tenantID, typ, asOfDate, nil)
		return err
	})
	if err != nil {
		return err
	}
	return a.printJSON(summaries)
}
