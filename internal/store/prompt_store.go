package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Prompt represents a row in the prompts table.
type Prompt struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Body        string     `db:"body"`
	Description string     `db:"description"`
	Favorite    bool       `db:"favorite"`
	Version     int        `db:"version"`
	UseCount    int        `db:"use_count"`
	LastUsedAt  *time.Time `db:"last_used_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Version is a snapshot of a prompt's title and body as they were before an
// edit replaced them.
type Version struct {
	PromptID  string    `db:"prompt_id"`
	Version   int       `db:"version"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// PromptStore is the sqlx-backed implementation of PromptStoreIface.
type PromptStore struct {
	db           *sqlx.DB
	keepVersions int
}

// NewPromptStore returns a PromptStore that retains at most keepVersions
// snapshots per prompt. keepVersions <= 0 keeps every snapshot.
func NewPromptStore(db *sqlx.DB, keepVersions int) *PromptStore {
	return &PromptStore{db: db, keepVersions: keepVersions}
}

// NewPrompt is the input to Insert.
type NewPrompt struct {
	Title       string
	Body        string
	Description string
	Favorite    bool
	Tags        []string
}

// Create inserts a new untagged prompt at version 1.
func (s *PromptStore) Create(ctx context.Context, title, body, description string) (*Prompt, error) {
	return s.Insert(ctx, NewPrompt{Title: title, Body: body, Description: description})
}

// Insert creates a prompt at version 1 together with its favorite flag and
// tags. Nothing is written unless every part succeeds.
func (s *PromptStore) Insert(ctx context.Context, in NewPrompt) (*Prompt, error) {
	title := strings.TrimSpace(in.Title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	for _, name := range in.Tags {
		if err := ValidateTagName(name); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO prompts (id, title, body, description, favorite, version, use_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, 0, ?, ?)
	`), id, title, in.Body, in.Description, in.Favorite, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	if err := linkTagsTx(ctx, tx, id, in.Tags); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the prompt matching id, or ErrNotFound.
func (s *PromptStore) GetByID(ctx context.Context, id string) (*Prompt, error) {
	var p Prompt
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT * FROM prompts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByTitle returns the oldest prompt whose trimmed title equals title, or
// ErrNotFound.
func (s *PromptStore) GetByTitle(ctx context.Context, title string) (*Prompt, error) {
	var p Prompt
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`
		SELECT * FROM prompts WHERE title = ? ORDER BY created_at ASC, id ASC LIMIT 1
	`), strings.TrimSpace(title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count returns the total number of prompts.
func (s *PromptStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prompts`); err != nil {
		return 0, err
	}
	return n, nil
}

// Update replaces a prompt's title, body and description. When the title or
// body changes, the previous state is kept as a version snapshot and the
// version number increments; description-only edits keep the version.
func (s *PromptStore) Update(ctx context.Context, id, title, body, description string) (*Prompt, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var cur Prompt
	err = tx.GetContext(ctx, &cur, tx.Rebind(`SELECT * FROM prompts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	version := cur.Version
	if cur.Title != title || cur.Body != body {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO prompt_versions (prompt_id, version, title, body, created_at)
			VALUES (?, ?, ?, ?, ?)
		`), cur.ID, cur.Version, cur.Title, cur.Body, cur.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot version %d: %w", cur.Version, err)
		}
		version++

		// Snapshots cover versions 1..version-1; keep the newest keepVersions.
		if s.keepVersions > 0 {
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				DELETE FROM prompt_versions WHERE prompt_id = ? AND version <= ?
			`), cur.ID, version-1-s.keepVersions)
			if err != nil {
				return nil, fmt.Errorf("prune versions: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE prompts SET title = ?, body = ?, description = ?, version = ?, updated_at = ? WHERE id = ?
	`), title, body, description, version, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a prompt together with its tag links and version history.
func (s *PromptStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompt_tags WHERE prompt_id = ?`), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompt_versions WHERE prompt_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// SetFavorite marks or unmarks a prompt as a favorite. It does not touch
// updated_at.
func (s *PromptStore) SetFavorite(ctx context.Context, id string, favorite bool) (*Prompt, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE prompts SET favorite = ? WHERE id = ?`), favorite, id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// MarkUsed records that a prompt was filled, copied or shared.
func (s *PromptStore) MarkUsed(ctx context.Context, id string) (*Prompt, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE prompts SET use_count = use_count + 1, last_used_at = ? WHERE id = ?
	`), time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetTags replaces the tag set for a prompt. Tags are upserted by name and
// names that derive the same slug collapse into one tag.
func (s *PromptStore) SetTags(ctx context.Context, promptID string, tagNames []string) error {
	for _, name := range tagNames {
		if err := ValidateTagName(name); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM prompts WHERE id = ?`), promptID)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	// Clear existing tags for this prompt.
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM prompt_tags WHERE prompt_id = ?`), promptID); err != nil {
		return err
	}
	if err := linkTagsTx(ctx, tx, promptID, tagNames); err != nil {
		return err
	}
	return tx.Commit()
}

// linkTagsTx upserts each tag and links it to the prompt once.
func linkTagsTx(ctx context.Context, tx *sqlx.Tx, promptID string, tagNames []string) error {
	seen := make(map[string]bool, len(tagNames))
	for _, name := range tagNames {
		tag, err := upsertTagTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO prompt_tags (prompt_id, tag_id) VALUES (?, ?)
		`), promptID, tag.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListTags returns all tags associated with a prompt, ordered by name.
func (s *PromptStore) ListTags(ctx context.Context, promptID string) ([]*Tag, error) {
	var tags []*Tag
	err := s.db.SelectContext(ctx, &tags, s.db.Rebind(`
		SELECT t.* FROM tags t
		INNER JOIN prompt_tags pt ON pt.tag_id = t.id
		WHERE pt.prompt_id = ?
		ORDER BY t.name ASC
	`), promptID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListVersions returns the retained snapshots of a prompt, newest first.
func (s *PromptStore) ListVersions(ctx context.Context, promptID string) ([]*Version, error) {
	if _, err := s.GetByID(ctx, promptID); err != nil {
		return nil, err
	}
	var versions []*Version
	err := s.db.SelectContext(ctx, &versions, s.db.Rebind(`
		SELECT * FROM prompt_versions WHERE prompt_id = ? ORDER BY version DESC
	`), promptID)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion returns one snapshot, or ErrVersionNotFound.
func (s *PromptStore) GetVersion(ctx context.Context, promptID string, version int) (*Version, error) {
	var v Version
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`
		SELECT * FROM prompt_versions WHERE prompt_id = ? AND version = ?
	`), promptID, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrVersionNotFound, version)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RestoreVersion makes a snapshot's title and body current again. The restore
// is itself an edit, so the replaced state becomes a new snapshot.
func (s *PromptStore) RestoreVersion(ctx context.Context, promptID string, version int) (*Prompt, error) {
	cur, err := s.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	v, err := s.GetVersion(ctx, promptID, version)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, promptID, v.Title, v.Body, cur.Description)
}
