package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-prompts/internal/api"
	"github.com/joestump/joe-prompts/internal/store"
	"github.com/joestump/joe-prompts/internal/testutil"
)

// testEnv holds the stores and router needed for API integration tests.
type testEnv struct {
	Router      http.Handler
	PromptStore *store.PromptStore
	TagStore    *store.TagStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	ps := store.NewPromptStore(db, 10)
	ts := store.NewTagStore(db)

	router := api.NewAPIRouter(api.Deps{
		PromptStore: ps,
		TagStore:    ts,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{Router: router, PromptStore: ps, TagStore: ts}
}

// do sends a request with an optional JSON body and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(buf)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorder body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), "body: %s", rec.Body.String())
}

// seedPrompt creates a prompt directly through the store.
func seedPrompt(t *testing.T, env *testEnv, title, body string) *store.Prompt {
	t.Helper()
	p, err := env.PromptStore.Create(t.Context(), title, body, "")
	require.NoError(t, err)
	return p
}
