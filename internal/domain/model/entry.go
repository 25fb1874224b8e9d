package model

import (
	"strings"
	"time"
)

// DefaultCategory is assigned when a create request omits the category.
const DefaultCategory = "general"

// VaultEntry is the single persisted record type. ID is assigned by the store
// on insert and never changes; CreatedAt is set once and UpdatedAt is restamped
// on every successful mutation.
type VaultEntry struct {
	ID        string
	Name      string
	Content   string
	Category  string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntry builds a VaultEntry ready for insertion. It trims the name, applies
// the category default, replaces nil tags with an empty slice, and stamps both
// timestamps with the same instant so CreatedAt == UpdatedAt on a fresh entry.
// Timestamps are truncated to millisecond precision, which is what the store
// persists; truncating here keeps round-tripped values comparable.
func NewEntry(name, content, category string, tags []string, now time.Time) VaultEntry {
	if category == "" {
		category = DefaultCategory
	}
	if tags == nil {
		tags = []string{}
	}

	stamp := now.UTC().Truncate(time.Millisecond)

	return VaultEntry{
		Name:      strings.TrimSpace(name),
		Content:   content,
		Category:  category,
		Tags:      tags,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

// EntryPatch describes a partial update. Nil pointers mean "leave unchanged".
// ID and CreatedAt are not patchable.
type EntryPatch struct {
	Name     *string
	Content  *string
	Category *string
	Tags     *[]string
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Name == nil && p.Content == nil && p.Category == nil && p.Tags == nil
}
