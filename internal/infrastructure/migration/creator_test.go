package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add fx rate index", "add_fx_rate_index"},
		{"Add-FX-Rate-Index", "add_fx_rate_index"},
		{"ADD_FX_RATE_INDEX", "add_fx_rate_index"},
		{"add__fx__rate", "add_fx_rate"},
		{"Add Periods 2025", "add_periods_2025"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add fx rate index", "Index rates by date")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_fx_rate_index.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_fx_rate_index.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_fx_rate_index")
	assert.Contains(t, string(up), "-- Description: Index rates by date")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	second, err := CreateMigration(dir, "drop legacy column", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000010_later.up.sql":         {},
		"sql/000010_later.down.sql":       {},
		"sql/000002_second.up.sql":        {},
		"sql/000002_second.down.sql":      {},
		"sql/README.md":                   {},
		"sql/notes.up.sql":                {},
		"sql/nested/000003_skip.up.sql":   {},
		"sql/000001_kernel_schema.up.sql": {},
	}

	got, err := ListMigrations(fsys, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_kernel_schema", "000002_second", "000010_later"}, got)

	missing, err := ListMigrations(fsys, "absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEmbedded(t *testing.T) {
	got, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_kernel_schema"}, got)
}
