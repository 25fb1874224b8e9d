package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
	"github.com/nvasilev/vaultkeeper/internal/domain/port/driven"
)

// recentWindow is the trailing window for the "recently created" tally.
const recentWindow = 7 * 24 * time.Hour

// topTagLimit caps the tag frequency list.
const topTagLimit = 10

// perEntryOverheadBytes approximates the fixed per-document storage cost
// (id, field names, timestamps) on top of the variable string payload.
const perEntryOverheadBytes = 120

// TagCount is one bucket of the tag frequency list.
type TagCount struct {
	Tag   string
	Count int64
}

// VaultStats is the aggregate statistics view assembled for the stats endpoint.
type VaultStats struct {
	TotalEntries       int64
	CreatedLast7Days   int64
	Oldest             *model.VaultEntry
	Newest             *model.VaultEntry
	Categories         []model.CategoryCount
	TopTags            []TagCount
	EstimatedSizeBytes int64
}

// StatsService assembles collection-wide statistics. It depends only on the
// EntryStore port.
type StatsService struct {
	entries driven.EntryStore
}

// NewStatsService creates a StatsService with the required dependencies.
func NewStatsService(entries driven.EntryStore) *StatsService {
	return &StatsService{entries: entries}
}

// Collect computes the statistics document as of now.
func (s *StatsService) Collect(ctx context.Context, now time.Time) (*VaultStats, error) {
	total, err := s.entries.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	recent, err := s.entries.CountCreatedSince(ctx, now.Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent entries: %w", err)
	}

	categories, err := s.entries.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}

	// Newest-first list gives newest/oldest at the ends and feeds the tag
	// tally and size estimate.
	all, err := s.entries.List(ctx, model.DefaultSort())
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	stats := &VaultStats{
		TotalEntries:     total,
		CreatedLast7Days: recent,
		Categories:       categories,
		TopTags:          []TagCount{},
	}

	if len(all) > 0 {
		newest := all[0]
		oldest := all[len(all)-1]
		stats.Newest = &newest
		stats.Oldest = &oldest
	}

	stats.TopTags = topTags(all)
	stats.EstimatedSizeBytes = estimateSize(all)

	return stats, nil
}

// topTags tallies tag frequency across all entries and returns the most
// frequent ones, capped at topTagLimit. Ties break alphabetically so the
// result is deterministic.
func topTags(entries []model.VaultEntry) []TagCount {
	freq := make(map[string]int64)
	for _, e := range entries {
		for _, tag := range e.Tags {
			freq[tag]++
		}
	}

	tags := make([]TagCount, 0, len(freq))
	for tag, count := range freq {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count == tags[j].Count {
			return tags[i].Tag < tags[j].Tag
		}
		return tags[i].Count > tags[j].Count
	})

	if len(tags) > topTagLimit {
		tags = tags[:topTagLimit]
	}

	return tags
}

// estimateSize approximates stored bytes as the variable string payload of
// each entry plus a fixed per-document overhead. Deliberately a heuristic,
// not a measurement of actual on-disk size.
func estimateSize(entries []model.VaultEntry) int64 {
	var size int64
	for _, e := range entries {
		size += int64(len(e.Name) + len(e.Content) + len(e.Category))
		for _, tag := range e.Tags {
			size += int64(len(tag))
		}
		size += perEntryOverheadBytes
	}
	return size
}
