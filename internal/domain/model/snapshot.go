package model

import "time"

// BackupOperation labels the mutation that triggered a snapshot.
type BackupOperation string

const (
	BackupOpCreate BackupOperation = "CREATE"
	BackupOpUpdate BackupOperation = "UPDATE"
	BackupOpDelete BackupOperation = "DELETE"
)

// BackupTrigger identifies the entry whose mutation triggered the snapshot.
type BackupTrigger struct {
	ID   string
	Name string
}

// BackupSnapshot is a point-in-time copy of the whole collection, written once
// and never mutated. For deletes the snapshot is taken before the delete is
// committed, so it still contains the entry's last state.
type BackupSnapshot struct {
	Timestamp time.Time
	Operation BackupOperation
	Trigger   *BackupTrigger
	Count     int
	Entries   []VaultEntry
}

// BackupFileInfo describes one snapshot file on disk.
type BackupFileInfo struct {
	Name      string
	SizeBytes int64
	CreatedAt time.Time
}

// CategoryCount is one bucket of the category breakdown aggregation.
type CategoryCount struct {
	Category string
	Count    int64
}
