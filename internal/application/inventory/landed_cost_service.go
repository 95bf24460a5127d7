package inventory

import (
	"context"
	"fmt"

	"github.com/erp/kernel/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LandedCostService spreads ancillary costs over the lines of a receiving document
type LandedCostService struct {
	documents inventory.BaseDocumentRepository
	applier   inventory.LandedCostApplier
	logger    *zap.Logger
}

// NewLandedCostService creates a landed cost service. applier may be nil, in
// which case allocations are only returned.
func NewLandedCostService(documents inventory.BaseDocumentRepository, applier inventory.LandedCostApplier, opts ...Option) *LandedCostService {
	o := applyOptions(opts)
	return &LandedCostService{documents: documents, applier: applier, logger: o.logger}
}

// AllocateLandedCost allocates the summed cost lines to the base document's
// receipt lines and hands non-empty results to the applier
func (s *LandedCostService) AllocateLandedCost(
	ctx context.Context,
	tenantID, baseDocumentID uuid.UUID,
	costs []inventory.LandedCostLine,
	method inventory.AllocationMethod,
) (inventory.AllocationResult, error) {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.Amount)
	}
	if total.IsZero() {
		return inventory.AllocateLandedCost(costs, nil, method)
	}

	lines, err := s.documents.ListReceiptLines(ctx, tenantID, baseDocumentID)
	if err != nil {
		return inventory.AllocationResult{}, fmt.Errorf("failed to load base document %s: %w", baseDocumentID, err)
	}
	result, err := inventory.AllocateLandedCost(costs, lines, method)
	if err != nil {
		return inventory.AllocationResult{}, err
	}

	if s.applier != nil && len(result.Allocations) > 0 {
		if err := s.applier.ApplyLandedCost(ctx, tenantID, baseDocumentID, result.Allocations); err != nil {
			return inventory.AllocationResult{}, fmt.Errorf("failed to apply landed cost: %w", err)
		}
	}
	s.logger.Info("Landed cost allocated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", baseDocumentID.String()),
		zap.String("method", string(result.Method)),
		zap.String("total", result.TotalCost.String()),
		zap.Int("lines", len(result.Allocations)),
	)
	return result, nil
}
