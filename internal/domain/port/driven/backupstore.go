package driven

import (
	"context"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

// BackupStore defines the driven port for collection snapshots.
//
// Create is invoked by every mutating operation. A mutation is not considered
// durably recorded unless its snapshot was written, so Create failures must be
// propagated to the caller, which fails the triggering request.
type BackupStore interface {
	// Create snapshots the entire collection to a new uniquely named file and
	// returns the filename.
	Create(ctx context.Context, op model.BackupOperation, trigger *model.BackupTrigger) (string, error)

	// List returns all snapshot files, newest first.
	List(ctx context.Context) ([]model.BackupFileInfo, error)
}
