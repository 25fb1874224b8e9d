package application

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
	"github.com/nvasilev/vaultkeeper/internal/domain/port/driven"
)

// ExportResult reports where the export was written and how many entries it holds.
type ExportResult struct {
	Path  string
	Count int
}

// ExportService renders the whole collection into a human-readable plain-text
// document at a fixed path, overwriting any previous export.
type ExportService struct {
	entries driven.EntryStore
	path    string
}

// NewExportService creates an ExportService writing to path.
func NewExportService(entries driven.EntryStore, path string) *ExportService {
	return &ExportService{entries: entries, path: path}
}

const exportBanner = "=================================================="

// Export writes the export document and returns its path and entry count.
func (s *ExportService) Export(ctx context.Context) (ExportResult, error) {
	entries, err := s.entries.List(ctx, model.DefaultSort())
	if err != nil {
		return ExportResult{}, fmt.Errorf("read collection for export: %w", err)
	}

	var b strings.Builder
	b.WriteString(exportBanner + "\n")
	b.WriteString("                VAULT EXPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Entries:   %d\n", len(entries))
	b.WriteString(exportBanner + "\n")

	for i, e := range entries {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, e.Name)
		fmt.Fprintf(&b, "ID:       %s\n", e.ID)
		fmt.Fprintf(&b, "Category: %s\n", e.Category)
		fmt.Fprintf(&b, "Tags:     %s\n", strings.Join(e.Tags, ", "))
		fmt.Fprintf(&b, "Created:  %s\n", e.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "Updated:  %s\n", e.UpdatedAt.UTC().Format(time.RFC3339))
		b.WriteString("Content:\n")
		b.WriteString(e.Content + "\n")
		b.WriteString(strings.Repeat("-", 50) + "\n")
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0o644); err != nil {
		return ExportResult{}, fmt.Errorf("write export file %s: %w", s.path, err)
	}

	return ExportResult{Path: s.path, Count: len(entries)}, nil
}
