package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/portalkit/catalog/pkg/catalog"
)

const maxUploadMemory = 32 << 20 // 32 MB held in memory before spilling to disk

// AssetHandler handles HTTP requests for catalog assets
type AssetHandler struct {
	service catalog.Service
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(service catalog.Service) *AssetHandler {
	return &AssetHandler{service: service}
}

// Routes returns the routes for assets
func (h *AssetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.UploadBatch)
	r.Get("/", h.QueryAssets)
	r.Get("/{id}", h.GetAsset)
	r.Patch("/{id}", h.UpdateAsset)
	r.Delete("/{id}", h.DeleteAsset)
	r.Get("/{id}/download", h.DownloadAsset)
	r.Post("/{id}/view", h.IncrementView)

	return r
}

// UploadFileResult is the per-file outcome in the upload response
type UploadFileResult struct {
	FileName string `json:"file_name"`
	AssetID  string `json:"asset_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadBatchResponse is the response body for a batch upload
type UploadBatchResponse struct {
	Results   []UploadFileResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// UploadBatch accepts a multipart form with one or more files under the
// "files" field plus shared metadata fields (category, tags,
// description, public) applied to every created asset.
func (h *AssetHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		slog.Error("Invalid multipart form", "error", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "No files in upload", http.StatusBadRequest)
		return
	}

	var files []catalog.UploadFile
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			slog.Error("Failed to open uploaded file", "file_name", fh.Filename, "error", err)
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		defer f.Close()

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		files = append(files, catalog.UploadFile{
			FileName: fh.Filename,
			MimeType: mimeType,
			Size:     fh.Size,
			Reader:   f,
		})
	}

	shared := catalog.SharedMetadata{
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Public:      r.FormValue("public") == "true",
	}
	if tags := r.FormValue("tags"); tags != "" {
		shared.Tags = splitTags(tags)
	}

	result, err := h.service.UploadBatch(r.Context(), catalog.UploadBatchRequest{
		Files:  files,
		Shared: shared,
		Actor:  PrincipalFromContext(r.Context()),
	})
	if err != nil {
		slog.Error("Batch upload failed", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := UploadBatchResponse{Succeeded: result.Succeeded()}
	for _, res := range result.Results {
		fr := UploadFileResult{FileName: res.FileName}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			resp.Failed++
		} else {
			fr.AssetID = res.AssetID.String()
		}
		resp.Results = append(resp.Results, fr)
	}

	slog.Info("Batch upload finished", "files", len(files), "succeeded", resp.Succeeded, "failed", resp.Failed)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// QueryAssets returns one page of assets.
// Query parameters: category, owner, public, q, cursor, page_size.
func (h *AssetHandler) QueryAssets(w http.ResponseWriter, r *http.Request) {
	q := catalog.AssetQuery{
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
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid page_size parameter", http.StatusBadRequest)
			return
		}
		q.PageSize = n
	}

	page, err := h.service.QueryAssets(r.Context(), q)
	if err != nil {
		slog.Error("Failed to query assets", "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, page)
}

// GetAsset retrieves an asset by ID
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get asset", "asset_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, asset)
}

// UpdateAssetRequest is the request body for updating an asset
type UpdateAssetRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Public      *bool    `json:"public"`
}

// UpdateAsset updates the caller-editable fields of an asset
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateAssetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := h.service.UpdateAsset(r.Context(), catalog.UpdateAssetRequest{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Public:      req.Public,
		Actor:       PrincipalFromContext(r.Context()),
	})
	if err != nil {
		slog.Error("Failed to update asset", "asset_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Asset updated", "asset_id", id.String())
	render.JSON(w, r, asset)
}

// DeleteAsset deletes an asset and its stored blob
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAsset(r.Context(), id, PrincipalFromContext(r.Context())); err != nil {
		slog.Error("Failed to delete asset", "asset_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Asset deleted", "asset_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// DownloadAsset streams the asset payload and bumps its download count
func (h *AssetHandler) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body, err := h.service.DownloadAsset(r.Context(), id)
	if err != nil {
		slog.Error("Failed to download asset", "asset_id", id.String(), "error", err)
		writeServiceError(w, err)
		return
	}
	defer body.Close()

	if err := h.service.IncrementAssetDownload(r.Context(), id); err != nil {
		slog.Warn("Failed to bump download count", "asset_id", id.String(), "error", err)
	}

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": asset.FileName}))
	if asset.ByteSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.ByteSize, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Asset stream interrupted", "asset_id", id.String(), "error", err)
	}
}

// IncrementView bumps the asset view counter
func (h *AssetHandler) IncrementView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.IncrementAssetView(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// writeServiceError maps domain errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrAssetNotFound), errors.Is(err, catalog.ErrContentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, catalog.ErrInvalidContentType),
		errors.Is(err, catalog.ErrInvalidContentStatus),
		errors.Is(err, catalog.ErrEmptyBatch),
		errors.Is(err, catalog.ErrMalformedCursor),
		errors.Is(err, catalog.ErrStorageBackendNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
