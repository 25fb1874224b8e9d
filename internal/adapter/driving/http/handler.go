// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvasilev/vaultkeeper/internal/application"
	"github.com/nvasilev/vaultkeeper/internal/domain/model"
	"github.com/nvasilev/vaultkeeper/internal/domain/port/driven"
)

// Handler serves the vault REST API.
type Handler struct {
	entries   driven.EntryStore
	backups   driven.BackupStore
	exportSvc *application.ExportService
	statsSvc  *application.StatsService
	version   string
	startedAt time.Time
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	entries driven.EntryStore,
	backups driven.BackupStore,
	exportSvc *application.ExportService,
	statsSvc *application.StatsService,
	version string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		entries:   entries,
		backups:   backups,
		exportSvc: exportSvc,
		statsSvc:  statsSvc,
		version:   version,
		startedAt: time.Now().UTC(),
		logger:    logger,
	}
}

// NewRouter builds the chi router with all routes registered and wrapped with
// request-id, logging, metrics, and recovery middleware.
//
// Route ordering invariant: the literal /search and /sort routes are
// registered before the parameterized /{id} route. A search or sort request
// that fell through to /{id} would be misread as an id lookup and fail id
// parsing, so this ordering must be preserved.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(metricsMiddleware)
	// Recovery innermost so panics are caught before logging.
	r.Use(recoveryMiddleware(logger))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/vault", func(r chi.Router) {
			r.Get("/search", h.SearchEntries)
			r.Get("/sort", h.SortEntries)
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})
		r.Get("/export", h.Export)
		r.Get("/stats", h.Stats)
		r.Get("/backups", h.ListBackups)
	})

	// Unmatched routes and disallowed methods both get the catalog-style 404.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}

// routeCatalog is the route list served at / .
var routeCatalog = []RouteInfo{
	{Method: http.MethodGet, Path: "/"},
	{Method: http.MethodGet, Path: "/health"},
	{Method: http.MethodGet, Path: "/metrics"},
	{Method: http.MethodGet, Path: "/api/vault"},
	{Method: http.MethodPost, Path: "/api/vault"},
	{Method: http.MethodGet, Path: "/api/vault/search"},
	{Method: http.MethodGet, Path: "/api/vault/sort"},
	{Method: http.MethodGet, Path: "/api/vault/{id}"},
	{Method: http.MethodPut, Path: "/api/vault/{id}"},
	{Method: http.MethodDelete, Path: "/api/vault/{id}"},
	{Method: http.MethodGet, Path: "/api/export"},
	{Method: http.MethodGet, Path: "/api/stats"},
	{Method: http.MethodGet, Path: "/api/backups"},
}

// Root returns service metadata and the route catalog.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "vaultkeeper",
		Version: h.version,
		Routes:  routeCatalog,
	})
}

// ListEntries returns all entries, newest first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.List(r.Context(), model.DefaultSort())
	if err != nil {
		h.logger.Error("failed to list entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

// CreateEntry validates the body, persists a new entry, and snapshots the
// collection. The snapshot happens after the insert; if it fails the request
// fails even though the entry was persisted.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "name and content are required")
		return
	}

	entry := model.NewEntry(req.Name, req.Content, req.Category, req.Tags, time.Now())

	created, err := h.entries.Insert(r.Context(), entry)
	if err != nil {
		h.logger.Error("failed to create entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	EntriesTotal.Inc()

	if !h.snapshot(w, r, model.BackupOpCreate, created) {
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(created))
}

// GetEntry returns a single entry by id.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(*entry))
}

// UpdateEntry applies a partial update and snapshots the collection.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, errMsg := buildPatch(req)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	updated, err := h.entries.Update(r.Context(), id, patch)
	if err != nil {
		h.logger.Error("failed to update entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	if !h.snapshot(w, r, model.BackupOpUpdate, *updated) {
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(*updated))
}

// DeleteEntry snapshots the collection while it still contains the entry,
// then deletes. If the snapshot fails the delete does not proceed.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load entry for delete", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	if !h.snapshot(w, r, model.BackupOpDelete, *entry) {
		return
	}

	deleted, err := h.entries.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if deleted == nil {
		// Raced with a concurrent delete between the snapshot and here.
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	EntriesTotal.Dec()

	writeJSON(w, http.StatusOK, toEntryResponse(*deleted))
}

// SearchEntries performs a case-insensitive substring search. The q parameter
// is mandatory; its absence is a client error, not a match-everything query.
func (h *Handler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	matches, err := h.entries.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to search entries", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Count:   len(matches),
		Entries: toEntryResponses(matches),
	})
}

// SortEntries returns all entries in the requested order.
func (h *Handler) SortEntries(w http.ResponseWriter, r *http.Request) {
	spec, err := model.ParseSortSpec(r.URL.Query().Get("by"), r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.entries.List(r.Context(), spec)
	if err != nil {
		h.logger.Error("failed to sort entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

// Export writes the plain-text export file and reports its path.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportSvc.Export(r.Context())
	if err != nil {
		h.logger.Error("failed to export entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{
		File:         result.Path,
		EntriesCount: result.Count,
	})
}

// Stats returns the aggregate statistics document.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsSvc.Collect(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to collect stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

// ListBackups lists snapshot files, newest first.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := h.backups.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toBackupListResponse(infos))
}

// Health reports liveness, store connectivity, and process uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	connected := true
	if err := h.entries.Ping(r.Context()); err != nil {
		h.logger.Error("store ping failed", "error", err)
		status = "degraded"
		connected = false
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         status,
		StoreConnected: connected,
		Uptime:         time.Since(h.startedAt).Round(time.Second).String(),
		Version:        h.version,
		Time:           time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the catch-all for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{
		Error:  "route not found",
		Path:   r.URL.Path,
		Method: r.Method,
	})
}

// snapshot writes a collection backup for the given mutation. On failure it
// writes the 500 response itself and returns false so the caller aborts.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request, op model.BackupOperation, entry model.VaultEntry) bool {
	trigger := &model.BackupTrigger{ID: entry.ID, Name: entry.Name}

	file, err := h.backups.Create(r.Context(), op, trigger)
	if err != nil {
		h.logger.Error("failed to write backup", "operation", op, "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return false
	}
	BackupsTotal.WithLabelValues(string(op)).Inc()

	h.logger.Info("backup written", "operation", op, "file", file, "entry_id", entry.ID)
	return true
}

// buildPatch validates the update body and converts it to a domain patch.
// Returns a non-empty message on a client error.
func buildPatch(req UpdateEntryRequest) (model.EntryPatch, string) {
	patch := model.EntryPatch{
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return model.EntryPatch{}, "name cannot be empty"
		}
		patch.Name = &trimmed
	}

	if req.Content != nil && *req.Content == "" {
		return model.EntryPatch{}, "content cannot be empty"
	}

	return patch, ""
}
