package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

// stubEntryStore implements the EntryStore port with canned list results.
type stubEntryStore struct {
	entries []model.VaultEntry
	err     error
}

func (s *stubEntryStore) Insert(_ context.Context, e model.VaultEntry) (model.VaultEntry, error) {
	return e, nil
}
func (s *stubEntryStore) GetByID(_ context.Context, _ string) (*model.VaultEntry, error) {
	return nil, nil
}
func (s *stubEntryStore) Update(_ context.Context, _ string, _ model.EntryPatch) (*model.VaultEntry, error) {
	return nil, nil
}
func (s *stubEntryStore) Delete(_ context.Context, _ string) (*model.VaultEntry, error) {
	return nil, nil
}
func (s *stubEntryStore) List(_ context.Context, _ model.SortSpec) ([]model.VaultEntry, error) {
	return s.entries, s.err
}
func (s *stubEntryStore) Search(_ context.Context, _ string) ([]model.VaultEntry, error) {
	return nil, nil
}
func (s *stubEntryStore) Count(_ context.Context) (int64, error)                      { return 0, nil }
func (s *stubEntryStore) CountCreatedSince(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
func (s *stubEntryStore) CategoryCounts(_ context.Context) ([]model.CategoryCount, error) {
	return nil, nil
}
func (s *stubEntryStore) Ping(_ context.Context) error { return nil }

var testEntry = model.VaultEntry{
	ID:        "64f1a2b3c4d5e6f7a8b9c0d1",
	Name:      "router login",
	Content:   "admin/admin",
	Category:  "home",
	Tags:      []string{"network"},
	CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	UpdatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
}

var backupNamePattern = regexp.MustCompile(`^backup-(CREATE|UPDATE|DELETE)-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{9}Z\.json$`)

func TestWriter_Create(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, &stubEntryStore{entries: []model.VaultEntry{testEntry}})

	name, err := w.Create(context.Background(), model.BackupOpCreate, &model.BackupTrigger{
		ID:   testEntry.ID,
		Name: testEntry.Name,
	})
	require.NoError(t, err)
	assert.Regexp(t, backupNamePattern, name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))

	assert.Equal(t, "CREATE", snap["operation"])
	assert.Equal(t, float64(1), snap["count"])

	trigger, ok := snap["trigger"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testEntry.ID, trigger["id"])
	assert.Equal(t, "router login", trigger["name"])

	entries, ok := snap["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	first, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "router login", first["name"])
	assert.Equal(t, "admin/admin", first["content"])
	assert.Equal(t, "home", first["category"])
}

func TestWriter_Create_NilTrigger(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, &stubEntryStore{})

	name, err := w.Create(context.Background(), model.BackupOpUpdate, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))

	assert.Nil(t, snap["trigger"])
	assert.Equal(t, float64(0), snap["count"])

	entries, ok := snap["entries"].([]any)
	require.True(t, ok)
	assert.Empty(t, entries, "empty collection snapshots as an empty array, not null")
}

func TestWriter_Create_StoreError(t *testing.T) {
	w := NewWriter(t.TempDir(), &stubEntryStore{err: errors.New("store down")})

	_, err := w.Create(context.Background(), model.BackupOpDelete, nil)
	assert.Error(t, err, "a snapshot must not be written when the collection cannot be read")
}

func TestWriter_Create_MissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "does-not-exist"), &stubEntryStore{})

	_, err := w.Create(context.Background(), model.BackupOpCreate, nil)
	assert.Error(t, err, "a missing backups directory is an error, not silently recreated")
}

func TestWriter_List(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, &stubEntryStore{})
	ctx := context.Background()

	first, err := w.Create(ctx, model.BackupOpCreate, nil)
	require.NoError(t, err)
	second, err := w.Create(ctx, model.BackupOpDelete, nil)
	require.NoError(t, err)

	// An unrelated file in the directory is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	infos, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Newest first; the second snapshot has the later embedded timestamp.
	assert.Equal(t, second, infos[0].Name)
	assert.Equal(t, first, infos[1].Name)
	assert.Positive(t, infos[0].SizeBytes)
	assert.False(t, infos[0].CreatedAt.IsZero())
}

func TestWriter_List_MissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "gone"), &stubEntryStore{})

	_, err := w.List(context.Background())
	assert.Error(t, err)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "backups")

	require.NoError(t, EnsureDir(dir))

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// Idempotent on an existing directory.
	assert.NoError(t, EnsureDir(dir))
}
