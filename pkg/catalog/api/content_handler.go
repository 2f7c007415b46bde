package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/portalkit/catalog/pkg/catalog"
)

// ContentHandler handles HTTP requests for authored content
type ContentHandler struct {
	service catalog.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service catalog.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the routes for content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateContent)
	r.Get("/", h.QueryContents)
	r.Post("/bulk-status", h.BulkStatus)
	r.Get("/{id}", h.GetContent)
	r.Patch("/{id}", h.UpdateContent)
	r.Delete("/{id}", h.DeleteContent)
	r.Post("/{id}/view", h.IncrementView)
	r.Post("/{id}/like", h.ToggleLike)

	return r
}

// CreateContentRequest is the request body for creating content
type CreateContentRequest struct {
	Title              string     `json:"title"`
	Body               string     `json:"body"`
	Type               string     `json:"type"`
	Category           string     `json:"category"`
	Tags               []string   `json:"tags"`
	Public             bool       `json:"public"`
	Featured           bool       `json:"featured"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at"`
	Attachments        []string   `json:"attachments"`
}

// CreateContent creates a new content entry in draft status
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	attachments, ok := parseUUIDList(w, req.Attachments)
	if !ok {
		return
	}

	content, err := h.service.CreateContent(r.Context(), catalog.CreateContentRequest{
		Title:              req.Title,
		Body:               req.Body,
		Type:               catalog.ContentType(req.Type),
		Category:           req.Category,
		Tags:               req.Tags,
		Public:             req.Public,
		Featured:           req.Featured,
		ScheduledPublishAt: req.ScheduledPublishAt,
		Attachments:        attachments,
		Actor:              PrincipalFromContext(r.Context()),
	})
	if err != nil {
		slog.Error("Failed to create content", "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content created", "content_id", content.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, content)
}

// QueryContents returns one page of contents.
// Query parameters: category, owner, public, type, status, featured, q,
// cursor, page_size.
func (h *ContentHandler) QueryContents(w http.ResponseWriter, r *http.Request) {
	q := catalog.ContentQuery{
		Search: r.URL.Query().Get("q"),
		Cursor: r.URL.Query().Get("cursor"),
	}

	if v := r.URL.Query().Get("category"); v != "" {
		q.Category = &v
	}
	if v := r.URL.Query().Get("owner"); v != "" {
		q.OwnerID = &v
	}
	if v := r.URL.Query().Get("public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid public parameter", http.StatusBadRequest)
			return
		}
		q.Public = &b
	}
	if v := r.URL.Query().Get("type"); v != "" {
		t := catalog.ContentType(v)
		q.Type = &t
	}
	if v := r.URL.Query().Get("status"); v != "" {
		s := catalog.ContentStatus(v)
		q.Status = &s
	}
	if v := r.URL.Query().Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid featured parameter", http.StatusBadRequest)
			return
		}
		q.Featured = &b
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid page_size parameter", http.StatusBadRequest)
			return
		}
		q.PageSize = n
	}

	page, err := h.service.QueryContents(r.Context(), q)
	if err != nil {
		slog.Error("Failed to query contents", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, page)
}

// GetContent retrieves a content entry by ID
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	content, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get content", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, content)
}

// UpdateContentRequest is the request body for updating content
type UpdateContentRequest struct {
	Title              *string    `json:"title"`
	Body               *string    `json:"body"`
	Category           *string    `json:"category"`
	Tags               []string   `json:"tags"`
	Public             *bool      `json:"public"`
	Featured           *bool      `json:"featured"`
	Status             *string    `json:"status"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at"`
	Attachments        []string   `json:"attachments"`
}

// UpdateContent updates a content entry. Absent fields are unchanged.
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	attachments, ok := parseUUIDList(w, req.Attachments)
	if !ok {
		return
	}

	update := catalog.UpdateContentRequest{
		ID:                 id,
		Title:              req.Title,
		Body:               req.Body,
		Category:           req.Category,
		Tags:               req.Tags,
		Public:             req.Public,
		Featured:           req.Featured,
		ScheduledPublishAt: req.ScheduledPublishAt,
		Attachments:        attachments,
		Actor:              PrincipalFromContext(r.Context()),
	}
	if req.Status != nil {
		s := catalog.ContentStatus(*req.Status)
		update.Status = &s
	}

	content, err := h.service.UpdateContent(r.Context(), update)
	if err != nil {
		slog.Error("Failed to update content", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content updated", "content_id", id.String())
	render.JSON(w, r, content)
}

// DeleteContent deletes a content entry
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContent(r.Context(), id, PrincipalFromContext(r.Context())); err != nil {
		slog.Error("Failed to delete content", "content_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Content deleted", "content_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// IncrementView bumps the content view counter
func (h *ContentHandler) IncrementView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.IncrementContentView(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike flips the caller's like on a content entry
func (h *ContentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	content, err := h.service.ToggleLike(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, content)
}

// BulkStatusRequest is the request body for a bulk status change
type BulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkItemResult is the per-id outcome in the bulk status response
type BulkItemResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// BulkStatusResponse is the response body for a bulk status change
type BulkStatusResponse struct {
	Results   []BulkItemResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// BulkStatus applies one status change across a set of content ids.
// Ids succeed or fail independently.
func (h *ContentHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ids, ok := parseUUIDList(w, req.IDs)
	if !ok {
		return
	}

	result, err := h.service.ApplyStatus(r.Context(), catalog.BulkStatusRequest{
		IDs:    ids,
		Status: catalog.ContentStatus(req.Status),
		Actor:  PrincipalFromContext(r.Context()),
	})
	if err != nil {
		slog.Error("Bulk status change failed", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := BulkStatusResponse{Succeeded: result.Succeeded, Failed: result.Failed}
	for _, res := range result.Results {
		ir := BulkItemResult{ID: res.ID.String()}
		if res.Err != nil {
			ir.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, ir)
	}

	slog.Info("Bulk status change finished", "ids", len(ids), "succeeded", resp.Succeeded, "failed", resp.Failed)
	render.JSON(w, r, resp)
}

func parseUUIDList(w http.ResponseWriter, raw []string) ([]uuid.UUID, bool) {
	var ids []uuid.UUID
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid ID: "+s, http.StatusBadRequest)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
