package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-prompts/internal/store"
)

type tagsAPIHandler struct {
	tags    store.TagStoreIface
	prompts store.PromptStoreIface
	log     *slog.Logger
}

func registerTagRoutes(r chi.Router, tags store.TagStoreIface, prompts store.PromptStoreIface, log *slog.Logger) {
	h := &tagsAPIHandler{tags: tags, prompts: prompts, log: log}
	r.Get("/tags", h.List)
	r.Post("/tags", h.Create)
	r.Get("/tags/{slug}/prompts", h.ListPrompts)
}

// List returns all tags with their prompt counts, ordered by name.
// GET /api/v1/tags
func (h *tagsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListAll(r.Context())
	if err != nil {
		h.log.Error("api: list tags", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	resp := &TagListResponse{Tags: make([]*TagResponse, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, &TagResponse{Slug: t.Slug, Name: t.Name, PromptCount: t.PromptCount})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create registers a tag ahead of use so clients can offer it as a choice.
// Creating a tag whose slug exists returns the existing tag.
// POST /api/v1/tags
func (h *tagsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	tag, err := h.tags.Upsert(r.Context(), req.Name)
	if errors.Is(err, store.ErrTagInvalid) {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_TAG")
		return
	}
	if err != nil {
		h.log.Error("api: upsert tag", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	tagged, err := h.prompts.List(r.Context(), store.ListOptions{Tag: tag.Slug})
	if err != nil {
		h.log.Error("api: count tagged prompts", "slug", tag.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, &TagResponse{Slug: tag.Slug, Name: tag.Name, PromptCount: len(tagged)})
}

// ListPrompts returns the prompts carrying the tag, paginated like
// GET /api/v1/prompts.
// GET /api/v1/tags/{slug}/prompts?sort=&limit=&cursor=
func (h *tagsAPIHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	// Verify the tag exists.
	_, err := h.tags.GetBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tag not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.log.Error("api: get tag", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	sort, err := store.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_SORT")
		return
	}
	cursor, limit := parsePagination(r)
	offset := decodeCursor(cursor)

	prompts, err := h.prompts.List(r.Context(), store.ListOptions{
		Tag:    slug,
		Sort:   sort,
		Limit:  limit + 1,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("api: list tagged prompts", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
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
			h.log.Error("api: load tags", "prompt_id", p.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
		resp.Prompts = append(resp.Prompts, pr)
	}
	writeJSON(w, http.StatusOK, resp)
}
