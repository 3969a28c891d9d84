package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/joe-prompts/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	PromptStore store.PromptStoreIface
	TagStore    store.TagStoreIface
	Logger      *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// NewRouter builds the top-level HTTP handler: the JSON API under /api/v1,
// prometheus metrics at /metrics and a liveness probe at /healthz.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(slogFormatter{log: deps.logger()}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/v1", NewAPIRouter(deps))
	return r
}

// NewAPIRouter creates a chi sub-router for /api/v1.
// All routes return application/json.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonContentType)

	log := deps.logger()
	registerPromptRoutes(r, deps.PromptStore, log)
	registerTagRoutes(r, deps.TagStore, deps.PromptStore, log)
	registerRenderRoutes(r)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// slogFormatter plugs slog into chi's RequestLogger: one structured line per
// request, and the panic with its stack when Recoverer catches one.
type slogFormatter struct {
	log *slog.Logger
}

func (f slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{log: f.log.With(
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)}
}

type slogEntry struct {
	log *slog.Logger
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.log.Info("http request", "status", status, "bytes", bytes, "duration", elapsed)
}

func (e *slogEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("http panic", "panic", v, "stack", string(stack))
}
