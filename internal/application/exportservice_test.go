package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

func TestExportService_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")

	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	store := &stubEntryStore{entries: []model.VaultEntry{
		{
			ID:        "64f1a2b3c4d5e6f7a8b9c0d1",
			Name:      "router login",
			Content:   "admin/admin",
			Category:  "home",
			Tags:      []string{"network", "hardware"},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}}

	svc := NewExportService(store, path)

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, 1, result.Count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "VAULT EXPORT")
	assert.Contains(t, text, "Entries:   1")
	assert.Contains(t, text, "[1] router login")
	assert.Contains(t, text, "ID:       64f1a2b3c4d5e6f7a8b9c0d1")
	assert.Contains(t, text, "Category: home")
	assert.Contains(t, text, "Tags:     network, hardware")
	assert.Contains(t, text, "Created:  2026-02-01T09:30:00Z")
	assert.Contains(t, text, "admin/admin")
}

func TestExportService_Export_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale previous export"), 0o644))

	svc := NewExportService(&stubEntryStore{}, path)

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale previous export")
	assert.Contains(t, string(data), "Entries:   0")
}

func TestExportService_Export_StoreError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	svc := NewExportService(&stubEntryStore{listErr: errors.New("store down")}, path)

	_, err := svc.Export(context.Background())
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no export file should be written on store failure")
}
