package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erp/kernel/internal/domain/ledger"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/infrastructure/config"
	"github.com/erp/kernel/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLite points the CLI at a fresh SQLite file and returns a connection
// to seed it
func useSQLite(t *testing.T) *persistence.Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.db")
	t.Setenv("KERNEL_DATABASE_DRIVER", "sqlite")
	t.Setenv("KERNEL_DATABASE_SQLITE_PATH", path)
	t.Setenv("KERNEL_LOG_LEVEL", "error")
	t.Setenv("KERNEL_LOG_OUTPUT", "stderr")
	t.Setenv("KERNEL_REDIS_ENABLED", "false")
	t.Setenv("KERNEL_TELEMETRY_ENABLED", "false")

	db, err := persistence.Open(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"post-everything"}},
		{"unknown global flag", []string{"-verbose", "aging"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestRun_CommandFlagErrors(t *testing.T) {
	useSQLite(t)
	tenant := uuid.NewString()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing tenant", []string{"close-period", "-period", uuid.NewString()}, errUsage},
		{"bad tenant", []string{"close-period", "-tenant", "nope", "-period", uuid.NewString()}, shared.ErrInvalidInput},
		{"bad sub-ledger type", []string{"aging", "-tenant", tenant, "-type", "GL", "-as-of", "2024-12-31"}, errUsage},
		{"bad date", []string{"reconcile", "-tenant", tenant, "-type", "AR", "-as-of", "31/12/2024"}, shared.ErrInvalidInput},
		{"missing rate", []string{"rate", "-tenant", tenant, "-from", "USD", "-date", "2024-12-31"}, errUsage},
		{"comma decimal rate", []string{"rate", "-tenant", tenant, "-from", "USD", "-date", "2024-12-31", "-rate", "4,47"}, shared.ErrInvalidInput},
		{"unknown migrate subcommand", []string{"migrate", "sideways"}, errUsage},
		{"outbox without drain", []string{"outbox"}, errUsage},
		{"revalue without accounts", []string{"revalue", "-tenant", tenant, "-entity", tenant, "-cutoff", "2024-12-31"}, shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_ClosePeriodThenDrainOutbox(t *testing.T) {
	ctx := context.Background()
	db := useSQLite(t)

	tenantID, entityID := uuid.New(), uuid.New()
	start := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	period, err := ledger.NewPeriod(uuid.New(), tenantID, entityID, "2024-12", start, start.AddDate(0, 1, -1))
	require.NoError(t, err)
	require.NoError(t, persistence.NewRepositories(db.DB, nil, nil).Periods().Save(ctx, period))

	out, err := runCLI(t, "close-period", "-tenant", tenantID.String(), "-period", period.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, `"Status": "CLOSED"`)

	_, err = runCLI(t, "close-period", "-tenant", tenantID.String(), "-period", period.ID.String())
	assert.ErrorIs(t, err, shared.ErrInvalidState, "closing twice is rejected")

	out, err = runCLI(t, "outbox", "drain", "-batch", "10")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var relayed struct {
		EventType string    `json:"eventType"`
		TenantID  uuid.UUID `json:"tenantId"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &relayed))
	assert.Equal(t, shared.EventTypePeriodClosed, relayed.EventType)
	assert.Equal(t, tenantID, relayed.TenantID)

	out, err = runCLI(t, "outbox", "drain")
	require.NoError(t, err)
	assert.Empty(t, out, "sent entries are not relayed again")
}

func TestRun_RateAndReports(t *testing.T) {
	useSQLite(t)
	tenant := uuid.NewString()

	out, err := runCLI(t, "rate", "-tenant", tenant, "-from", "usd", "-to", "myr", "-type", "closing",
		"-date", "2024-12-31", "-rate", "4.47", "-source", "BNM")
	require.NoError(t, err)
	assert.Contains(t, out, `"Rate": "4.47"`)
	assert.Contains(t, out, `"FromCurrency": "USD"`)

	out, err = runCLI(t, "reconcile", "-tenant", tenant, "-type", "ar", "-as-of", "2024-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, `"isInBalance": true`)
}

func TestRun_Migrate(t *testing.T) {
	useSQLite(t)

	out, err := runCLI(t, "migrate", "list")
	require.NoError(t, err)
	assert.Equal(t, "000001_kernel_schema\n", out)

	out, err = runCLI(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": 0`)

	_, err = runCLI(t, "migrate", "down")
	assert.Error(t, err)

	dir := t.TempDir()
	out, err = runCLI(t, "migrate", "create", dir, "add rate index")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "000001_add_rate_index.up.sql"))
}
