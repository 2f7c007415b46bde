package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/portalkit/catalog/pkg/catalog"
)

const defaultActivityLimit = 20

// StatsHandler serves catalog-wide aggregation endpoints
type StatsHandler struct {
	service catalog.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service catalog.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// Routes returns the routes for statistics
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Snapshot)
	r.Get("/activity", h.RecentActivity)

	return r
}

// Snapshot computes and returns a point-in-time catalog summary
func (h *StatsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		slog.Error("Failed to compute stats snapshot", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, snapshot)
}

// RecentActivity returns the most recent activity log entries
func (h *StatsHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.service.RecentActivity(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list recent activity", "error", err)
		writeServiceError(w, err)
		return
	}

	if entries == nil {
		entries = []*catalog.ActivityEntry{}
	}
	render.JSON(w, r, entries)
}
