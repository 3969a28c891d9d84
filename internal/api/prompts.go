package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-prompts/internal/metrics"
	"github.com/joestump/joe-prompts/internal/placeholder"
	"github.com/joestump/joe-prompts/internal/store"
)

// promptsAPIHandler provides REST handlers for prompt management and for
// rendering stored prompts.
type promptsAPIHandler struct {
	prompts store.PromptStoreIface
	log     *slog.Logger
}

// registerPromptRoutes registers prompt, version and render routes on r.
func registerPromptRoutes(r chi.Router, prompts store.PromptStoreIface, log *slog.Logger) {
	h := &promptsAPIHandler{prompts: prompts, log: log}
	r.Get("/prompts", h.List)
	r.Post("/prompts", h.Create)
	r.Route("/prompts/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Put("/favorite", h.SetFavorite)
		r.Post("/use", h.Use)
		r.Get("/versions", h.ListVersions)
		r.Get("/versions/{version}", h.GetVersion)
		r.Post("/versions/{version}/restore", h.RestoreVersion)
		r.Get("/placeholders", h.Placeholders)
		r.Post("/fill", h.Fill)
		r.Post("/preview", h.Preview)
	})
}

// writeStoreError maps store errors onto API error responses.
func (h *promptsAPIHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, store.ErrVersionNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "VERSION_NOT_FOUND")
	case errors.Is(err, store.ErrTitleEmpty), errors.Is(err, store.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_TITLE")
	case errors.Is(err, store.ErrTagInvalid):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_TAG")
	case errors.Is(err, store.ErrInvalidSort):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_SORT")
	case isDBLockError(err):
		h.log.Warn("api: database busy", "op", op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "server is busy, please retry", "DB_BUSY")
	default:
		h.log.Error("api: store failure", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}

// refreshPromptGauge updates the prompts gauge after a create or delete.
func (h *promptsAPIHandler) refreshPromptGauge(ctx context.Context) {
	n, err := h.prompts.Count(ctx)
	if err != nil {
		h.log.Warn("api: count prompts", "error", err)
		return
	}
	metrics.PromptsTotal.Set(float64(n))
}

// toPromptResponse renders p with its tag names and placeholder warnings.
func toPromptResponse(ctx context.Context, prompts store.PromptStoreIface, p *store.Prompt) (*PromptResponse, error) {
	tags, err := prompts.ListTags(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return &PromptResponse{
		ID:               p.ID,
		Title:            p.Title,
		Body:             p.Body,
		Description:      p.Description,
		Favorite:         p.Favorite,
		Version:          p.Version,
		UseCount:         p.UseCount,
		LastUsedAt:       p.LastUsedAt,
		Tags:             names,
		PlaceholderCount: placeholder.Count(p.Body),
		Warnings:         placeholderWarnings(p.Body),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

// writePrompt renders p with its tags and warnings.
func (h *promptsAPIHandler) writePrompt(w http.ResponseWriter, r *http.Request, status int, p *store.Prompt) {
	pr, err := toPromptResponse(r.Context(), h.prompts, p)
	if err != nil {
		h.writeStoreError(w, "load tags", err)
		return
	}
	writeJSON(w, status, pr)
}

// List returns prompts filtered by q, tag and favorites, ordered by sort.
// GET /api/v1/prompts?q=&tag=&favorites=true&sort=title|updated|created|used&limit=&cursor=
func (h *promptsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sort, err := store.ParseSortOrder(query.Get("sort"))
	if err != nil {
		h.writeStoreError(w, "list prompts", err)
		return
	}
	cursor, limit := parsePagination(r)
	offset := decodeCursor(cursor)
	favorites, _ := strconv.ParseBool(query.Get("favorites"))

	// Fetch one extra row to learn whether another page exists.
	prompts, err := h.prompts.List(r.Context(), store.ListOptions{
		Query:         query.Get("q"),
		Tag:           query.Get("tag"),
		FavoritesOnly: favorites,
		Sort:          sort,
		Limit:         limit + 1,
		Offset:        offset,
	})
	if err != nil {
		h.writeStoreError(w, "list prompts", err)
		return
	}

	resp := &PromptListResponse{Prompts: make([]*PromptResponse, 0, min(len(prompts), limit))}
	if len(prompts) > limit {
		prompts = prompts[:limit]
		next := encodeCursor(offset + limit)
		resp.NextCursor = &next
	}
	for _, p := range prompts {
		pr, err := toPromptResponse(r.Context(), h.prompts, p)
		if err != nil {
			h.writeStoreError(w, "load tags", err)
			return
		}
		resp.Prompts = append(resp.Prompts, pr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create creates a new prompt. Placeholder warnings are reported in the
// response but never block the save.
// POST /api/v1/prompts
func (h *promptsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	ctx := r.Context()
	p, err := h.prompts.Insert(ctx, store.NewPrompt{
		Title:       req.Title,
		Body:        req.Body,
		Description: req.Description,
		Favorite:    req.Favorite,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeStoreError(w, "create prompt", err)
		return
	}
	h.refreshPromptGauge(ctx)
	h.log.Info("prompt created", "prompt_id", p.ID, "placeholders", placeholder.Count(p.Body))

	h.writePrompt(w, r, http.StatusCreated, p)
}

// Get returns a single prompt by ID.
// GET /api/v1/prompts/{id}
func (h *promptsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "get prompt", err)
		return
	}
	h.writePrompt(w, r, http.StatusOK, p)
}

// Update replaces a prompt's title, body and description, snapshotting the
// previous version when the title or body changes.
// PUT /api/v1/prompts/{id}
func (h *promptsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	for _, name := range req.Tags {
		if err := store.ValidateTagName(name); err != nil {
			h.writeStoreError(w, "update prompt", err)
			return
		}
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	p, err := h.prompts.Update(ctx, id, req.Title, req.Body, req.Description)
	if err != nil {
		h.writeStoreError(w, "update prompt", err)
		return
	}
	if req.Tags != nil {
		if err := h.prompts.SetTags(ctx, id, req.Tags); err != nil {
			h.writeStoreError(w, "set tags", err)
			return
		}
	}
	h.writePrompt(w, r, http.StatusOK, p)
}

// Delete removes a prompt and its history.
// DELETE /api/v1/prompts/{id}
func (h *promptsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.prompts.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, "delete prompt", err)
		return
	}
	h.refreshPromptGauge(r.Context())
	h.log.Info("prompt deleted", "prompt_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SetFavorite marks or unmarks a prompt as favorite.
// PUT /api/v1/prompts/{id}/favorite
func (h *promptsAPIHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	p, err := h.prompts.SetFavorite(r.Context(), chi.URLParam(r, "id"), req.Favorite)
	if err != nil {
		h.writeStoreError(w, "set favorite", err)
		return
	}
	h.writePrompt(w, r, http.StatusOK, p)
}

// Use records that the client copied or shared the prompt.
// POST /api/v1/prompts/{id}/use
func (h *promptsAPIHandler) Use(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.MarkUsed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "mark used", err)
		return
	}
	h.writePrompt(w, r, http.StatusOK, p)
}

// ListVersions returns the retained snapshots of a prompt, newest first.
// GET /api/v1/prompts/{id}/versions
func (h *promptsAPIHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.prompts.ListVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "list versions", err)
		return
	}
	resp := &VersionListResponse{Versions: make([]*VersionResponse, 0, len(versions))}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, toVersionResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetVersion returns one snapshot.
// GET /api/v1/prompts/{id}/versions/{version}
func (h *promptsAPIHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	n, ok := versionParam(w, r)
	if !ok {
		return
	}
	v, err := h.prompts.GetVersion(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		h.writeStoreError(w, "get version", err)
		return
	}
	writeJSON(w, http.StatusOK, toVersionResponse(v))
}

// RestoreVersion makes a snapshot current again.
// POST /api/v1/prompts/{id}/versions/{version}/restore
func (h *promptsAPIHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	n, ok := versionParam(w, r)
	if !ok {
		return
	}
	p, err := h.prompts.RestoreVersion(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		h.writeStoreError(w, "restore version", err)
		return
	}
	h.writePrompt(w, r, http.StatusOK, p)
}

func versionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "version must be a positive integer", "BAD_REQUEST")
		return 0, false
	}
	return n, true
}

func toVersionResponse(v *store.Version) *VersionResponse {
	return &VersionResponse{Version: v.Version, Title: v.Title, Body: v.Body, CreatedAt: v.CreatedAt}
}

// Placeholders describes the input form for a stored prompt.
// GET /api/v1/prompts/{id}/placeholders
func (h *promptsAPIHandler) Placeholders(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "get prompt", err)
		return
	}
	done := observeRender(ModeExtract)
	resp := &PlaceholdersResponse{
		Placeholders: placeholder.Extract(p.Body),
		Warnings:     placeholderWarnings(p.Body),
		Count:        placeholder.Count(p.Body),
	}
	done()
	writeJSON(w, http.StatusOK, resp)
}

// Fill substitutes values into a stored prompt and records the use.
// POST /api/v1/prompts/{id}/fill
func (h *promptsAPIHandler) Fill(w http.ResponseWriter, r *http.Request) {
	var req ValuesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	p, err := h.prompts.MarkUsed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "mark used", err)
		return
	}
	done := observeRender(ModeFill)
	text := placeholder.Fill(p.Body, req.Values)
	done()
	writeJSON(w, http.StatusOK, &FillResponse{Text: text})
}

// Preview renders a stored prompt without recording a use.
// POST /api/v1/prompts/{id}/preview
func (h *promptsAPIHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req ValuesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	p, err := h.prompts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, "get prompt", err)
		return
	}
	done := observeRender(ModePreview)
	resp := &PreviewResponse{
		Text:     placeholder.Preview(p.Body, req.Values),
		Segments: placeholder.AnnotatedPreview(p.Body, req.Values),
	}
	done()
	writeJSON(w, http.StatusOK, resp)
}
