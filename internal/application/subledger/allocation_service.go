package subledger

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/subledger"
	"github.com/erp/kernel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AllocationRequest asks for part or all of a payment to be applied to open invoices
type AllocationRequest struct {
	TenantID  uuid.UUID       `json:"tenantId" validate:"required"`
	Type      subledger.Type  `json:"type" validate:"required,oneof=AR AP"`
	PaymentID uuid.UUID       `json:"paymentId" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	// TargetInvoiceIDs is the invoice order for SPECIFIC allocation
	TargetInvoiceIDs []uuid.UUID `json:"targetInvoiceIds,omitempty"`
}

// AllocationResult lists the stored allocations and what was left over
type AllocationResult struct {
	PaymentID       uuid.UUID
	Allocations     []*subledger.PaymentAllocation
	UnappliedAmount decimal.Decimal
}

// TotalApplied sums the stored allocations
func (r *AllocationResult) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.AppliedAmount)
	}
	return total
}

// AllocationService applies payments to invoices
type AllocationService struct {
	invoices subledger.InvoiceRepository
	payments subledger.PaymentRepository
	ids      shared.IDGenerator
	clock    shared.Clock
	logger   *zap.Logger
	metrics  *telemetry.KernelMetrics
}

// NewAllocationService creates an allocation service
func NewAllocationService(
	invoices subledger.InvoiceRepository,
	payments subledger.PaymentRepository,
	ids shared.IDGenerator,
	clock shared.Clock,
	opts ...Option,
) *AllocationService {
	o := applyOptions(opts)
	return &AllocationService{
		invoices: invoices,
		payments: payments,
		ids:      ids,
		clock:    clock,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// AllocatePayment applies req.Amount of the payment to the party's open
// invoices, greedily in the order the strategy gives. The amount is capped at
// what remains unallocated on the payment; anything not applied is returned
// as UnappliedAmount. Non-positive amounts allocate nothing.
func (s *AllocationService) AllocatePayment(ctx context.Context, req AllocationRequest, strategy subledger.AllocationStrategy) (result *AllocationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "subledger", "allocate_payment",
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.String("payment_id", req.PaymentID.String()),
		attribute.String("strategy", string(strategy)),
	)
	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.ObserveOperation(ctx, "allocate_payment", started, err)
		span.End()
	}()

	if report := shared.ValidateStruct(req); !report.IsValid() {
		return nil, fmt.Errorf("%w: allocation request: %v", shared.ErrInvalidInput, report.Codes())
	}
	if _, err := subledger.ParseAllocationStrategy(string(strategy)); err != nil {
		return nil, err
	}

	payment, err := s.payments.FindByID(ctx, req.TenantID, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", req.PaymentID, err)
	}
	if payment.Type != req.Type {
		return nil, fmt.Errorf("%w: payment %s is %s, not %s", shared.ErrInvalidInput, payment.ID, payment.Type, req.Type)
	}

	result = &AllocationResult{
		PaymentID:       payment.ID,
		Allocations:     make([]*subledger.PaymentAllocation, 0),
		UnappliedAmount: req.Amount,
	}
	if !req.Amount.IsPositive() {
		return result, nil
	}

	allocated, err := s.payments.AllocatedAmount(ctx, req.TenantID, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations of payment %s: %w", payment.ID, err)
	}
	available := decimal.Min(req.Amount, payment.Amount.Sub(allocated))

	candidates, err := s.candidates(ctx, req, payment, strategy)
	if err != nil {
		return nil, err
	}
	plan := subledger.PlanAllocation(available, candidates)

	byID := make(map[uuid.UUID]*subledger.Invoice, len(candidates))
	for _, inv := range candidates {
		byID[inv.ID] = inv
	}
	now := s.clock.Now()
	touched := make([]*subledger.Invoice, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		inv := byID[line.InvoiceID]
		if err := inv.ApplyPayment(line.AppliedAmount); err != nil {
			return nil, fmt.Errorf("failed to apply payment to invoice %s: %w", inv.InvoiceNumber, err)
		}
		touched = append(touched, inv)
		result.Allocations = append(result.Allocations, &subledger.PaymentAllocation{
			ID:            s.ids.Generate(),
			TenantID:      req.TenantID,
			PaymentID:     payment.ID,
			InvoiceID:     inv.ID,
			AppliedAmount: line.AppliedAmount,
			AllocatedAt:   now,
		})
	}
	result.UnappliedAmount = req.Amount.Sub(plan.TotalApplied())

	if len(touched) > 0 {
		if err := s.invoices.Save(ctx, touched...); err != nil {
			return nil, fmt.Errorf("failed to save invoices: %w", err)
		}
		if err := s.payments.SaveAllocations(ctx, result.Allocations...); err != nil {
			return nil, fmt.Errorf("failed to save allocations: %w", err)
		}
	}

	s.metrics.RecordPaymentAllocations(ctx, req.TenantID, string(req.Type), len(result.Allocations))
	s.logger.Info("Payment allocated",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("strategy", string(strategy)),
		zap.Int("allocations", len(result.Allocations)),
		zap.String("unapplied", result.UnappliedAmount.String()),
	)
	return result, nil
}

// candidates returns the invoices to consume in order. SPECIFIC honours the
// target order and falls back to FIFO when no targets are given.
func (s *AllocationService) candidates(
	ctx context.Context,
	req AllocationRequest,
	payment *subledger.Payment,
	strategy subledger.AllocationStrategy,
) ([]*subledger.Invoice, error) {
	if strategy == subledger.StrategyFIFO || len(req.TargetInvoiceIDs) == 0 {
		invoices, err := s.invoices.FindOpenByParty(ctx, req.TenantID, req.Type, payment.PartyID, payment.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to find open invoices: %w", err)
		}
		subledger.SortFIFO(invoices)
		return invoices, nil
	}

	seen := make(map[uuid.UUID]bool, len(req.TargetInvoiceIDs))
	targets := make([]uuid.UUID, 0, len(req.TargetInvoiceIDs))
	for _, id := range req.TargetInvoiceIDs {
		if !seen[id] {
			seen[id] = true
			targets = append(targets, id)
		}
	}
	invoices, err := s.invoices.FindByIDs(ctx, req.TenantID, targets)
	if err != nil {
		return nil, fmt.Errorf("failed to find target invoices: %w", err)
	}
	for _, inv := range invoices {
		if inv.Type != req.Type || inv.PartyID != payment.PartyID || inv.Currency != payment.Currency {
			return nil, fmt.Errorf("%w: invoice %s does not belong to the payment's party and currency",
				shared.ErrInvalidInput, inv.InvoiceNumber)
		}
	}
	return invoices, nil
}
