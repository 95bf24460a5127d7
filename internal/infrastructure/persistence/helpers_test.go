package persistence

import (
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/infrastructure/clock"
	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(newTestDB(t), clock.NewSequence(), clock.Fixed(testNow))
}

func monthPeriod(t *testing.T, tenantID, entityID uuid.UUID, m time.Month) *ledger.Period {
	t.Helper()
	start := date(2024, m, 1)
	p, err := ledger.NewPeriod(uuid.New(), tenantID, entityID, start.Format("2006-01"), start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	return p
}
