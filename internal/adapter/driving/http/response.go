package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nvasilev/vaultkeeper/internal/application"
	"github.com/nvasilev/vaultkeeper/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// notFoundResponse is the body for unmatched routes.
type notFoundResponse struct {
	Error  string `json:"error"`
	Path   string `json:"path"`
	Method string `json:"method"`
}

// panicResponse is the body for errors caught by the recovery middleware.
type panicResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EntryResponse is the JSON representation of a vault entry.
type EntryResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// CreateEntryRequest is the JSON body for the create endpoint.
type CreateEntryRequest struct {
	Name     string   `json:"name"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// UpdateEntryRequest is the JSON body for the update endpoint. Absent fields
// are left unchanged.
type UpdateEntryRequest struct {
	Name     *string   `json:"name"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

// SearchResponse is the JSON representation of a search result.
type SearchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Entries []EntryResponse `json:"entries"`
}

// ExportResponse reports a completed export.
type ExportResponse struct {
	File         string `json:"file"`
	EntriesCount int    `json:"entriesExported"`
}

// CategoryCountResponse is one category bucket. The _id key mirrors the
// store's aggregation output.
type CategoryCountResponse struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// TagCountResponse is one tag frequency bucket.
type TagCountResponse struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// StatsResponse is the aggregate statistics document.
type StatsResponse struct {
	TotalEntries       int64                   `json:"totalEntries"`
	CreatedLast7Days   int64                   `json:"createdLast7Days"`
	OldestEntry        *EntryResponse          `json:"oldestEntry"`
	NewestEntry        *EntryResponse          `json:"newestEntry"`
	Categories         []CategoryCountResponse `json:"categories"`
	TopTags            []TagCountResponse      `json:"topTags"`
	EstimatedSizeBytes int64                   `json:"estimatedSizeBytes"`
}

// BackupFileResponse describes one snapshot file.
type BackupFileResponse struct {
	File      string `json:"file"`
	SizeBytes int64  `json:"sizeBytes"`
	CreatedAt string `json:"createdAt"`
}

// BackupListResponse is the JSON representation of the backups listing.
type BackupListResponse struct {
	Count   int                  `json:"count"`
	Backups []BackupFileResponse `json:"backups"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	StoreConnected bool   `json:"storeConnected"`
	Uptime         string `json:"uptime"`
	Version        string `json:"version"`
	Time           string `json:"time"`
}

// RouteInfo describes one route in the service catalog.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// RootResponse is the service metadata document served at /.
type RootResponse struct {
	Service string      `json:"service"`
	Version string      `json:"version"`
	Routes  []RouteInfo `json:"routes"`
}

// toEntryResponse converts a domain VaultEntry to its JSON representation.
func toEntryResponse(e model.VaultEntry) EntryResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	return EntryResponse{
		ID:        e.ID,
		Name:      e.Name,
		Content:   e.Content,
		Category:  e.Category,
		Tags:      tags,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toEntryResponses converts a slice, always producing a non-nil slice so the
// JSON renders as an array rather than null.
func toEntryResponses(entries []model.VaultEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

// toStatsResponse converts the application stats view to its JSON representation.
func toStatsResponse(stats *application.VaultStats) StatsResponse {
	resp := StatsResponse{
		TotalEntries:       stats.TotalEntries,
		CreatedLast7Days:   stats.CreatedLast7Days,
		Categories:         make([]CategoryCountResponse, 0, len(stats.Categories)),
		TopTags:            make([]TagCountResponse, 0, len(stats.TopTags)),
		EstimatedSizeBytes: stats.EstimatedSizeBytes,
	}

	if stats.Oldest != nil {
		oldest := toEntryResponse(*stats.Oldest)
		resp.OldestEntry = &oldest
	}
	if stats.Newest != nil {
		newest := toEntryResponse(*stats.Newest)
		resp.NewestEntry = &newest
	}

	for _, c := range stats.Categories {
		resp.Categories = append(resp.Categories, CategoryCountResponse{ID: c.Category, Count: c.Count})
	}
	for _, tc := range stats.TopTags {
		resp.TopTags = append(resp.TopTags, TagCountResponse{Tag: tc.Tag, Count: tc.Count})
	}

	return resp
}

// toBackupListResponse converts backup file infos to the listing representation.
func toBackupListResponse(infos []model.BackupFileInfo) BackupListResponse {
	resp := BackupListResponse{
		Count:   len(infos),
		Backups: make([]BackupFileResponse, 0, len(infos)),
	}

	for _, fi := range infos {
		resp.Backups = append(resp.Backups, BackupFileResponse{
			File:      fi.Name,
			SizeBytes: fi.SizeBytes,
			CreatedAt: fi.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return resp
}
