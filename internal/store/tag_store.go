package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var tagSlugStripRe = regexp.MustCompile(`[^a-z0-9-]`)

// Tag represents a row in the tags table.
type Tag struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// TagCount is a tag together with the number of prompts carrying it.
type TagCount struct {
	Tag
	PromptCount int `db:"prompt_count"`
}

// TagStore is the sqlx-backed implementation of TagStoreIface.
type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// DeriveTagSlug derives a URL-safe slug from a tag name:
// lowercase, replace spaces/underscores with hyphens, strip non-[a-z0-9-].
func DeriveTagSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = tagSlugStripRe.ReplaceAllString(s, "")
	// Collapse consecutive hyphens.
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Upsert creates a tag if it doesn't exist (by slug), or returns the existing one.
func (s *TagStore) Upsert(ctx context.Context, name string) (*Tag, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tag, err := upsertTagTx(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tag, nil
}

// upsertTagTx is the transactional variant shared with PromptStore.SetTags.
func upsertTagTx(ctx context.Context, tx *sqlx.Tx, name string) (*Tag, error) {
	if err := ValidateTagName(name); err != nil {
		return nil, err
	}
	slug := DeriveTagSlug(name)
	name = strings.TrimSpace(name)

	var existing Tag
	err := tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM tags WHERE slug = ?`), slug)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO tags (id, name, slug, created_at) VALUES (?, ?, ?, ?)
	`), id, name, slug, now)
	if err != nil {
		// Race condition: another writer inserted first. Re-fetch.
		if isUniqueConstraintError(err) {
			if err := tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM tags WHERE slug = ?`), slug); err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &Tag{ID: id, Name: name, Slug: slug, CreatedAt: now}, nil
}

// GetBySlug returns the tag matching slug, or ErrNotFound.
func (s *TagStore) GetBySlug(ctx context.Context, slug string) (*Tag, error) {
	var t Tag
	err := s.db.GetContext(ctx, &t, s.db.Rebind(`SELECT * FROM tags WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAll returns all tags ordered by name, each with its prompt count.
func (s *TagStore) ListAll(ctx context.Context) ([]*TagCount, error) {
	var tags []*TagCount
	err := s.db.SelectContext(ctx, &tags, `
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.prompt_id) AS prompt_count
		FROM tags t
		LEFT JOIN prompt_tags pt ON pt.tag_id = t.id
		GROUP BY t.id, t.name, t.slug, t.created_at
		ORDER BY t.name ASC
	`)
	if err != nil {
		return nil, err
	}
	return tags, nil
}
