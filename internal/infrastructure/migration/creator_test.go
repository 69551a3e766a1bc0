package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/purchase/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"add_line_moves", "add_line_moves"},
		{"Add Line Moves", "add_line_moves"},
		{"add--line  moves!", "add_line_moves"},
		{"  trailing-", "trailing"},
		{"v2 Index", "v2_index"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	first, err := CreateMigration(dir, "Create Orders", "purchase orders")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Migration: create_orders")
	assert.Contains(t, string(content), "-- Description: purchase orders")

	second, err := CreateMigration(dir, "add index", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_add_index.down.sql"), second.DownPath)

	_, err = CreateMigration(dir, "???", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_b.up.sql", "000002_b.down.sql",
		"000001_a.up.sql", "000001_a.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)

	names, err = ListMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		switch {
		case filepath.Ext(name) != ".sql":
		case len(name) > 7 && name[len(name)-7:] == ".up.sql":
			ups[name[:len(name)-7]] = true
		case len(name) > 9 && name[len(name)-9:] == ".down.sql":
			downs[name[:len(name)-9]] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
