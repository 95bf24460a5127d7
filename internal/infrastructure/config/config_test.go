package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "finance-kernel", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "kernel", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "MYR", cfg.Ledger.BaseCurrency)
		assert.Equal(t, 24*time.Hour, cfg.FX.RateCacheTTL)
		assert.Equal(t, []int{0, 30, 60, 90}, cfg.Subledger.AgingBucketDays)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
	})

	t.Run("loads values from environment variables with KERNEL prefix", func(t *testing.T) {
		t.Setenv("KERNEL_APP_NAME", "kernel-test")
		t.Setenv("KERNEL_DATABASE_HOST", "testdb.local")
		t.Setenv("KERNEL_DATABASE_PORT", "5433")
		t.Setenv("KERNEL_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("KERNEL_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("KERNEL_LEDGER_BASE_CURRENCY", "sgd")
		t.Setenv("KERNEL_FX_CURRENCIES", "USD,EUR")
		t.Setenv("KERNEL_SUBLEDGER_AGING_BUCKET_DAYS", "0,15,45")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "kernel-test", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "SGD", cfg.Ledger.BaseCurrency)
		assert.Equal(t, []string{"USD", "EUR"}, cfg.FX.Currencies)
		assert.Equal(t, []int{0, 15, 45}, cfg.Subledger.AgingBucketDays)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("KERNEL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("KERNEL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		t.Setenv("KERNEL_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("KERNEL_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects malformed base currency", func(t *testing.T) {
		t.Setenv("KERNEL_LEDGER_BASE_CURRENCY", "RINGGIT")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.base_currency")
	})

	t.Run("rejects unordered aging buckets", func(t *testing.T) {
		t.Setenv("KERNEL_SUBLEDGER_AGING_BUCKET_DAYS", "30,0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ascending")
	})

	t.Run("rejects non-numeric aging buckets", func(t *testing.T) {
		t.Setenv("KERNEL_SUBLEDGER_AGING_BUCKET_DAYS", "0,thirty")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "thirty")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		t.Setenv("KERNEL_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("KERNEL_APP_ENV", "production")
		t.Setenv("KERNEL_DATABASE_PASSWORD", "secure-password")
		t.Setenv("KERNEL_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("KERNEL_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("KERNEL_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("KERNEL_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be postgres in production")
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("KERNEL_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.toml")
	content := `
[database]
driver = "sqlite"
sqlite_path = "/tmp/kernel-test.db"

[ledger]
base_currency = "USD"

[fx]
unrealized_gain_account_id = "0191a5a4-0000-7000-8000-000000007100"
unrealized_loss_account_id = "0191a5a4-0000-7000-8000-000000008100"
currencies = ["EUR", "GBP"]
rate_cache_ttl = "1h"

[subledger]
aging_bucket_days = [0, 7, 30]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/kernel-test.db", cfg.Database.SQLitePath)
	assert.Equal(t, "USD", cfg.Ledger.BaseCurrency)
	assert.Equal(t, "0191a5a4-0000-7000-8000-000000007100", cfg.FX.UnrealizedGainAccountID)
	assert.Equal(t, []string{"EUR", "GBP"}, cfg.FX.Currencies)
	assert.Equal(t, time.Hour, cfg.FX.RateCacheTTL)
	assert.Equal(t, []int{0, 7, 30}, cfg.Subledger.AgingBucketDays)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}

	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
