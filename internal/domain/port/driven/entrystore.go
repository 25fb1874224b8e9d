package driven

import (
	"context"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

// EntryStore defines the driven port for vault entry persistence.
//
// Lookups by id return (nil, nil) when no entry exists; a non-nil error means
// the store itself failed (including a malformed id, which the HTTP layer
// surfaces as a server error rather than a 404). Update and Delete follow the
// same convention: (nil, nil) means the id did not resolve.
type EntryStore interface {
	// Insert persists a new entry and returns it with the store-assigned ID.
	Insert(ctx context.Context, entry model.VaultEntry) (model.VaultEntry, error)

	// GetByID retrieves a single entry.
	GetByID(ctx context.Context, id string) (*model.VaultEntry, error)

	// Update applies a partial patch, restamps UpdatedAt, and returns the
	// updated document.
	Update(ctx context.Context, id string, patch model.EntryPatch) (*model.VaultEntry, error)

	// Delete removes an entry permanently and returns its last state.
	Delete(ctx context.Context, id string) (*model.VaultEntry, error)

	// List returns all entries in the given order.
	List(ctx context.Context, sort model.SortSpec) ([]model.VaultEntry, error)

	// Search returns entries where the query matches name, content, category,
	// or any tag as a case-insensitive substring.
	Search(ctx context.Context, query string) ([]model.VaultEntry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)

	// CountCreatedSince returns the number of entries created at or after t.
	CountCreatedSince(ctx context.Context, t time.Time) (int64, error)

	// CategoryCounts returns the per-category entry tally, largest first.
	CategoryCounts(ctx context.Context) ([]model.CategoryCount, error)

	// Ping checks store connectivity.
	Ping(ctx context.Context) error
}
