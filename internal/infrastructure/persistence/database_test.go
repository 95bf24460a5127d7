package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/erp/kernel/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDatabase opens a postgres-dialect Database over sqlmock
func newMockDatabase(t *testing.T, opts ...Option) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := OpenDialector(dialector, opts...)
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestOpen(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := Open(&config.DatabaseConfig{Driver: "mysql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("sqlite gets every kernel table", func(t *testing.T) {
		db, err := Open(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, "sqlite", db.Driver())
		for _, m := range models.All() {
			assert.True(t, db.DB.Migrator().HasTable(m), "missing table for %T", m)
		}
	})

	t.Run("sqlite uses a single connection", func(t *testing.T) {
		db, err := Open(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
		require.NoError(t, err)
		defer db.Close()

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
	})
}

func TestOpenDialector(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	assert.Equal(t, "postgres", db.Driver())
	assert.NoError(t, db.Ping())

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestDatabase_RepositoryQueries(t *testing.T) {
	t.Run("not found maps to the domain error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "gl_accounts" WHERE .*tenant_id = .* LIMIT`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormAccountRepository(db.DB).FindByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors pass through", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		boom := errors.New("connection reset")
		mock.ExpectQuery(`SELECT \* FROM "fa_assets"`).WillReturnError(boom)

		_, err := NewGormAssetRepository(db.DB).FindByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("slow statements are logged as warnings", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		db, mock, mockDB := newMockDatabase(t,
			WithLogger(zap.New(core), gormlogger.Warn),
			WithSlowQueryThreshold(time.Nanosecond),
		)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "sl_payments"`).
			WillDelayFor(time.Millisecond).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormPaymentRepository(db.DB).FindByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	})
}
