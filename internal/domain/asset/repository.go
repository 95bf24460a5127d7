package asset

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssetRepository stores assets
type AssetRepository interface {
	// FindByID returns shared.ErrNotFound when the asset does not exist for the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Asset, error)

	// Save inserts a newly registered asset
	Save(ctx context.Context, asset *Asset) error
}

// ScheduleRepository stores depreciation schedules
type ScheduleRepository interface {
	// FindByAsset returns the schedule ordered by period number (empty when none was generated)
	FindByAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]ScheduleLine, error)

	// SaveLines inserts a generated schedule
	SaveLines(ctx context.Context, lines []ScheduleLine) error

	// FindUnpostedDue returns unposted lines of the entity's assets whose period end lies in [from, to]
	FindUnpostedDue(ctx context.Context, tenantID, entityID uuid.UUID, from, to time.Time) ([]ScheduleLine, error)

	// MarkPosted records the journal id on a line
	MarkPosted(ctx context.Context, tenantID, lineID, journalID uuid.UUID) error
}
