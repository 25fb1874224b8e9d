// Package backup is the filesystem driven adapter that snapshots the vault
// collection to timestamped JSON files.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
	"github.com/nvasilev/vaultkeeper/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BackupStore = (*Writer)(nil)

const (
	filePrefix = "backup-"
	fileSuffix = ".json"
)

// Writer implements the BackupStore port over a local directory. Each snapshot
// targets its own uniquely timestamped file, so concurrent invocations cannot
// collide. The directory is created once at startup (see EnsureDir); its
// absence at write time is an error.
type Writer struct {
	dir     string
	entries driven.EntryStore
}

// NewWriter creates a Writer snapshotting the given store into dir.
func NewWriter(dir string, entries driven.EntryStore) *Writer {
	return &Writer{dir: dir, entries: entries}
}

// EnsureDir creates the backups directory if it does not exist. Called once
// from the composition root; failure there is fatal.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backups directory %s: %w", dir, err)
	}
	return nil
}

// snapshotFile is the on-disk JSON form of a BackupSnapshot.
type snapshotFile struct {
	Timestamp time.Time      `json:"timestamp"`
	Operation string         `json:"operation"`
	Trigger   *triggerRecord `json:"trigger"`
	Count     int            `json:"count"`
	Entries   []entryRecord  `json:"entries"`
}

type triggerRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type entryRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSnapshotFile(snap model.BackupSnapshot) snapshotFile {
	out := snapshotFile{
		Timestamp: snap.Timestamp,
		Operation: string(snap.Operation),
		Count:     snap.Count,
		Entries:   make([]entryRecord, 0, len(snap.Entries)),
	}

	if snap.Trigger != nil {
		out.Trigger = &triggerRecord{ID: snap.Trigger.ID, Name: snap.Trigger.Name}
	}

	for _, e := range snap.Entries {
		out.Entries = append(out.Entries, entryRecord{
			ID:        e.ID,
			Name:      e.Name,
			Content:   e.Content,
			Category:  e.Category,
			Tags:      e.Tags,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}

	return out
}

// Create reads the entire collection and writes it to a new snapshot file
// named backup-<OP>-<timestamp>.json, returning the filename. The write uses
// O_EXCL so a snapshot file is write-once by construction.
func (w *Writer) Create(ctx context.Context, op model.BackupOperation, trigger *model.BackupTrigger) (string, error) {
	entries, err := w.entries.List(ctx, model.DefaultSort())
	if err != nil {
		return "", fmt.Errorf("read collection for backup: %w", err)
	}

	now := time.Now().UTC()
	snap := model.BackupSnapshot{
		Timestamp: now,
		Operation: op,
		Trigger:   trigger,
		Count:     len(entries),
		Entries:   entries,
	}

	data, err := json.MarshalIndent(toSnapshotFile(snap), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("%s%s-%s%s", filePrefix, op, fileTimestamp(now), fileSuffix)
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create snapshot file %s: %w", name, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write snapshot file %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot file %s: %w", name, err)
	}

	return name, nil
}

// List returns all snapshot files in the directory, newest first.
func (w *Writer) List(_ context.Context) ([]model.BackupFileInfo, error) {
	dirEntries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read backups directory %s: %w", w.dir, err)
	}

	infos := make([]model.BackupFileInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup file %s: %w", name, err)
		}

		infos = append(infos, model.BackupFileInfo{
			Name:      name,
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime().UTC(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			// Filenames embed the snapshot timestamp, so they break ties.
			return infos[i].Name > infos[j].Name
		}
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})

	return infos, nil
}

// fileTimestamp renders t as an ISO-8601-derived stamp with the characters
// that are unsafe in filenames (colons, dots) replaced by hyphens.
// Nanosecond resolution keeps concurrent snapshot names unique.
func fileTimestamp(t time.Time) string {
	stamp := t.Format("2006-01-02T15:04:05.000000000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
}
