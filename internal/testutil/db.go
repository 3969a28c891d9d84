package testutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-prompts/internal/db"
	_ "modernc.org/sqlite"
)

// NewTestDB opens a fresh in-memory SQLite DB and runs all goose migrations.
// Every call gets its own database, including repeated calls in one test.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// Shared cache keeps every pooled connection of this handle on one
	// in-memory database; the uuid suffix keeps handles apart.
	name := strings.ReplaceAll(t.Name(), "/", "_") + "-" + uuid.NewString()
	dsn := "file:" + name + "?mode=memory&cache=shared&_busy_timeout=5000"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Up(conn, "sqlite3"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
