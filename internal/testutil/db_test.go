package testutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-prompts/internal/testutil"
)

func TestNewTestDB_HandlesAreIsolated(t *testing.T) {
	first := testutil.NewTestDB(t)
	second := testutil.NewTestDB(t)

	_, err := first.Exec(first.Rebind(`INSERT INTO tags (id, name, slug, created_at) VALUES (?, ?, ?, ?)`),
		"t1", "Go", "go", time.Now().UTC())
	require.NoError(t, err)

	var n int
	require.NoError(t, first.Get(&n, `SELECT COUNT(*) FROM tags`))
	assert.Equal(t, 1, n)

	require.NoError(t, second.Get(&n, `SELECT COUNT(*) FROM tags`))
	assert.Zero(t, n, "a second handle must start empty")
}
