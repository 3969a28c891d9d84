package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-prompts/internal/metrics"
	"github.com/joestump/joe-prompts/internal/placeholder"
	"github.com/joestump/joe-prompts/internal/store"
)

// Render modes accepted by POST /api/v1/render.
const (
	ModeFill      = "fill"
	ModePreview   = "preview"
	ModeAnnotated = "annotated"
	ModeExtract   = "extract"
	ModeValidate  = "validate"
)

func registerRenderRoutes(r chi.Router) {
	r.Post("/render", renderText)
}

// observeRender counts one engine call and records its duration when the
// returned func runs.
func observeRender(mode string) func() {
	start := time.Now()
	return func() {
		metrics.RendersTotal.WithLabelValues(mode).Inc()
		metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}
}

// placeholderWarnings validates text and counts the reported warnings.
func placeholderWarnings(text string) []string {
	w := store.TemplateWarnings(text)
	metrics.ValidationWarningsTotal.Add(float64(len(w)))
	return w
}

// render runs one engine operation over text. Every mode reports the
// template's warnings. ok is false for an unknown mode.
func render(mode, text string, values map[string]string) (resp *RenderResponse, ok bool) {
	resp = &RenderResponse{Mode: mode, Count: placeholder.Count(text)}
	switch mode {
	case ModeFill:
		resp.Text = placeholder.Fill(text, values)
	case ModePreview:
		resp.Text = placeholder.Preview(text, values)
	case ModeAnnotated:
		resp.Segments = placeholder.AnnotatedPreview(text, values)
	case ModeExtract:
		resp.Placeholders = placeholder.Extract(text)
	case ModeValidate:
	default:
		return nil, false
	}
	resp.Warnings = placeholderWarnings(text)
	return resp, true
}

// renderText runs the template engine over ad-hoc text without touching the
// database, for editors that render while the user types.
// POST /api/v1/render
func renderText(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeFill
	}

	done := observeRender(mode)
	resp, ok := render(mode, req.Text, req.Values)
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be one of: fill, preview, annotated, extract, validate", "INVALID_MODE")
		return
	}
	done()
	writeJSON(w, http.StatusOK, resp)
}
