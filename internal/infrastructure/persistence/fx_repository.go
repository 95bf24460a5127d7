package persistence

import (
	"context"
	"time"

	"github.com/erp/kernel/internal/domain/fx"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateRepository implements fx.RateRepository using GORM
type GormRateRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRateRepository creates a rate repository
func NewGormRateRepository(db *gorm.DB, clock shared.Clock) *GormRateRepository {
	return &GormRateRepository{db: db, now: clock.Now}
}

// FindRate returns the rate stored under the exact key
func (r *GormRateRepository) FindRate(ctx context.Context, key fx.RateKey) (*fx.Rate, error) {
	key = key.Normalized()
	var m models.RateModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(key.TenantID)).
		Where("from_currency = ? AND to_currency = ? AND rate_type = ? AND rate_date = ?",
			key.FromCurrency, key.ToCurrency, key.RateType, key.RateDate).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// UpsertRate inserts the rate or replaces the one stored under its key
func (r *GormRateRepository) UpsertRate(ctx context.Context, rate *fx.Rate) error {
	m := models.RateModelFromDomain(rate)
	m.UpdatedAt = r.now()
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error)
}

// GormMonetaryBalanceRepository implements fx.MonetaryBalanceRepository over
// dated balance snapshots
type GormMonetaryBalanceRepository struct {
	db  *gorm.DB
	ids shared.IDGenerator
}

// NewGormMonetaryBalanceRepository creates a monetary balance repository
func NewGormMonetaryBalanceRepository(db *gorm.DB, ids shared.IDGenerator) *GormMonetaryBalanceRepository {
	return &GormMonetaryBalanceRepository{db: db, ids: ids}
}

type balanceKey struct {
	account  uuid.UUID
	currency valueobject.Currency
}

// ListMonetaryBalances returns, per account and currency, the latest snapshot
// taken on or before cutoff
func (r *GormMonetaryBalanceRepository) ListMonetaryBalances(
	ctx context.Context,
	tenantID, entityID uuid.UUID,
	cutoff time.Time,
	currencies []valueobject.Currency,
) ([]fx.MonetaryBalance, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("entity_id = ? AND as_of <= ?", entityID, shared.DateOf(cutoff))
	if len(currencies) > 0 {
		query = query.Where("currency IN ?", currencies)
	}
	var rows []models.MonetaryBalanceModel
	if err := query.Order("account_id, currency, as_of DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[balanceKey]bool, len(rows))
	out := make([]fx.MonetaryBalance, 0, len(rows))
	for i := range rows {
		k := balanceKey{account: rows[i].AccountID, currency: rows[i].Currency}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// SaveSnapshot stores the entity's balances as of the given date
func (r *GormMonetaryBalanceRepository) SaveSnapshot(
	ctx context.Context,
	tenantID, entityID uuid.UUID,
	asOf time.Time,
	balances ...fx.MonetaryBalance,
) error {
	if len(balances) == 0 {
		return nil
	}
	rows := make([]*models.MonetaryBalanceModel, len(balances))
	for i, b := range balances {
		rows[i] = &models.MonetaryBalanceModel{
			ID:             r.ids.Generate(),
			TenantID:       tenantID,
			EntityID:       entityID,
			AccountID:      b.AccountID,
			Currency:       b.Currency,
			AsOf:           shared.DateOf(asOf),
			BalanceForeign: b.BalanceForeign,
			BalanceBase:    b.BalanceBaseBefore,
			IsMonetary:     b.IsMonetary,
		}
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

var (
	_ fx.RateRepository            = (*GormRateRepository)(nil)
	_ fx.MonetaryBalanceRepository = (*GormMonetaryBalanceRepository)(nil)
)
