package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

// stubEntryStore implements the EntryStore port with canned results for the
// read operations the reporters use.
type stubEntryStore struct {
	entries    []model.VaultEntry
	total      int64
	recent     int64
	categories []model.CategoryCount

	listErr  error
	countErr error

	sinceArg time.Time
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
	return s.entries, s.listErr
}
func (s *stubEntryStore) Search(_ context.Context, _ string) ([]model.VaultEntry, error) {
	return nil, nil
}
func (s *stubEntryStore) Count(_ context.Context) (int64, error) {
	return s.total, s.countErr
}
func (s *stubEntryStore) CountCreatedSince(_ context.Context, t time.Time) (int64, error) {
	s.sinceArg = t
	return s.recent, nil
}
func (s *stubEntryStore) CategoryCounts(_ context.Context) ([]model.CategoryCount, error) {
	return s.categories, nil
}
func (s *stubEntryStore) Ping(_ context.Context) error { return nil }

func statsEntry(name string, tags []string, createdAt time.Time) model.VaultEntry {
	return model.VaultEntry{
		ID:        "64f1a2b3c4d5e6f7a8b9c0d1",
		Name:      name,
		Content:   "content of " + name,
		Category:  "general",
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestStatsService_Collect(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Newest-first, matching the store's default ordering.
	store := &stubEntryStore{
		entries: []model.VaultEntry{
			statsEntry("newest", []string{"go", "infra"}, now.Add(-time.Hour)),
			statsEntry("middle", []string{"go"}, now.Add(-48*time.Hour)),
			statsEntry("oldest", []string{"go", "home"}, now.Add(-30*24*time.Hour)),
		},
		total:  3,
		recent: 2,
		categories: []model.CategoryCount{
			{Category: "general", Count: 2},
			{Category: "work", Count: 1},
		},
	}

	svc := NewStatsService(store)

	stats, err := svc.Collect(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalEntries)
	assert.Equal(t, int64(2), stats.CreatedLast7Days)
	assert.Equal(t, now.Add(-7*24*time.Hour), store.sinceArg, "recent window is trailing 7 days")

	require.NotNil(t, stats.Newest)
	require.NotNil(t, stats.Oldest)
	assert.Equal(t, "newest", stats.Newest.Name)
	assert.Equal(t, "oldest", stats.Oldest.Name)

	assert.Equal(t, store.categories, stats.Categories, "category order comes from the store aggregation")

	require.Len(t, stats.TopTags, 3)
	assert.Equal(t, TagCount{Tag: "go", Count: 3}, stats.TopTags[0])
	// Tie between home and infra breaks alphabetically.
	assert.Equal(t, TagCount{Tag: "home", Count: 1}, stats.TopTags[1])
	assert.Equal(t, TagCount{Tag: "infra", Count: 1}, stats.TopTags[2])

	assert.Positive(t, stats.EstimatedSizeBytes)
}

func TestStatsService_Collect_Empty(t *testing.T) {
	svc := NewStatsService(&stubEntryStore{})

	stats, err := svc.Collect(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalEntries)
	assert.Nil(t, stats.Oldest)
	assert.Nil(t, stats.Newest)
	assert.Empty(t, stats.TopTags)
	assert.Zero(t, stats.EstimatedSizeBytes)
}

func TestStatsService_Collect_TopTagsCapped(t *testing.T) {
	tags := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	store := &stubEntryStore{entries: []model.VaultEntry{
		statsEntry("tagged", tags, time.Now().UTC()),
	}}

	svc := NewStatsService(store)

	stats, err := svc.Collect(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Len(t, stats.TopTags, 10)
}

func TestStatsService_Collect_StoreError(t *testing.T) {
	svc := NewStatsService(&stubEntryStore{countErr: errors.New("store down")})

	_, err := svc.Collect(context.Background(), time.Now().UTC())
	assert.Error(t, err)
}

func TestEstimateSize_Deterministic(t *testing.T) {
	entries := []model.VaultEntry{
		statsEntry("a", []string{"x"}, time.Now().UTC()),
		statsEntry("b", nil, time.Now().UTC()),
	}

	assert.Equal(t, estimateSize(entries), estimateSize(entries))
}
