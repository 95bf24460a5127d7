package persistence

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/asset"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssetRepository implements asset.AssetRepository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates an asset repository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset of the tenant
func (r *GormAssetRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	var m models.AssetModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// Save inserts a newly registered asset
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	return translate(r.db.WithContext(ctx).Create(models.AssetModelFromDomain(a)).Error)
}

// GormScheduleRepository implements asset.ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a depreciation schedule repository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// FindByAsset returns the asset's schedule ordered by period number
func (r *GormScheduleRepository) FindByAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]asset.ScheduleLine, error) {
	var rows []models.ScheduleLineModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("asset_id = ?", assetID).
		Order("period_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return scheduleLines(rows), nil
}

// SaveLines inserts a generated schedule
func (r *GormScheduleRepository) SaveLines(ctx context.Context, lines []asset.ScheduleLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]*models.ScheduleLineModel, len(lines))
	for i, l := range lines {
		rows[i] = models.ScheduleLineModelFromDomain(l)
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// FindUnpostedDue returns unposted lines of the entity's assets whose period
// end lies in [from, to], grouped by asset in period order
func (r *GormScheduleRepository) FindUnpostedDue(ctx context.Context, tenantID, entityID uuid.UUID, from, to time.Time) ([]asset.ScheduleLine, error) {
	var rows []models.ScheduleLineModel
	err := r.db.WithContext(ctx).
		Table("fa_depreciation_schedule AS s").
		Select("s.*").
		Joins("JOIN fa_assets AS a ON a.id = s.asset_id").
		Where("s.tenant_id = ? AND a.entity_id = ? AND s.posted_journal_id IS NULL", tenantID, entityID).
		Where("s.period_end BETWEEN ? AND ?", shared.DateOf(from), shared.DateOf(to)).
		Order("s.asset_id, s.period_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return scheduleLines(rows), nil
}

// MarkPosted records the journal on a line. A line that already carries a
// journal is shared.ErrInvalidState.
func (r *GormScheduleRepository) MarkPosted(ctx context.Context, tenantID, lineID, journalID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var m models.ScheduleLineModel
	if err := db.Scopes(tenantScope(tenantID)).First(&m, "id = ?", lineID).Error; err != nil {
		return translate(err)
	}
	line := m.ToDomain()
	if err := line.MarkPosted(journalID); err != nil {
		return err
	}
	return db.Model(&models.ScheduleLineModel{}).
		Where("id = ? AND posted_journal_id IS NULL", lineID).
		Update("posted_journal_id", journalID).Error
}

func scheduleLines(rows []models.ScheduleLineModel) []asset.ScheduleLine {
	out := make([]asset.ScheduleLine, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ asset.AssetRepository    = (*GormAssetRepository)(nil)
	_ asset.ScheduleRepository = (*GormScheduleRepository)(nil)
)
