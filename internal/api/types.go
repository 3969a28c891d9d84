package api

import (
	"time"

	"github.com/joestump/joe-prompts/internal/placeholder"
)

// --- Prompt types ---

// CreatePromptRequest is the request body for POST /api/v1/prompts.
type CreatePromptRequest struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Description string   `json:"description,omitempty"`
	Favorite    bool     `json:"favorite,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdatePromptRequest is the request body for PUT /api/v1/prompts/{id}.
// A missing tags field leaves tags unchanged; an empty list clears them.
type UpdatePromptRequest struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// FavoriteRequest is the request body for PUT /api/v1/prompts/{id}/favorite.
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// PromptResponse is the JSON representation of a single prompt.
type PromptResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Description      string     `json:"description"`
	Favorite         bool       `json:"favorite"`
	Version          int        `json:"version"`
	UseCount         int        `json:"use_count"`
	LastUsedAt       *time.Time `json:"last_used_at"`
	Tags             []string   `json:"tags"`
	PlaceholderCount int        `json:"placeholder_count"`
	Warnings         []string   `json:"warnings"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PromptListResponse is the paginated response for prompt list endpoints.
type PromptListResponse struct {
	Prompts    []*PromptResponse `json:"prompts"`
	NextCursor *string           `json:"next_cursor"`
}

// VersionResponse is one retained snapshot of a prompt.
type VersionResponse struct {
	Version   int       `json:"version"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// VersionListResponse lists snapshots newest first.
type VersionListResponse struct {
	Versions []*VersionResponse `json:"versions"`
}

// --- Template engine types ---

// ValuesRequest carries the live placeholder values for fill and preview.
type ValuesRequest struct {
	Values map[string]string `json:"values"`
}

// PlaceholdersResponse describes the input form for a template.
type PlaceholdersResponse struct {
	Placeholders []placeholder.Placeholder `json:"placeholders"`
	Warnings     []string                  `json:"warnings"`
	Count        int                       `json:"count"`
}

// FillResponse is the fully substituted template.
type FillResponse struct {
	Text string `json:"text"`
}

// PreviewResponse carries both preview renderings.
type PreviewResponse struct {
	Text     string                       `json:"text"`
	Segments []placeholder.PreviewSegment `json:"segments"`
}

// RenderRequest is the request body for the stateless POST /api/v1/render.
type RenderRequest struct {
	Text   string            `json:"text"`
	Values map[string]string `json:"values,omitempty"`
	Mode   string            `json:"mode"`
}

// RenderResponse holds the output of one render mode. Text, warnings and
// count are always present; segments and placeholders only for their modes.
type RenderResponse struct {
	Mode         string                       `json:"mode"`
	Text         string                       `json:"text"`
	Segments     []placeholder.PreviewSegment `json:"segments,omitempty"`
	Placeholders []placeholder.Placeholder    `json:"placeholders,omitempty"`
	Warnings     []string                     `json:"warnings"`
	Count        int                          `json:"count"`
}

// --- Tag types ---

// TagResponse is the JSON representation of a tag.
type TagResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	PromptCount int    `json:"prompt_count"`
}

// CreateTagRequest is the request body for POST /api/v1/tags.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// TagListResponse lists all tags.
type TagListResponse struct {
	Tags []*TagResponse `json:"tags"`
}
