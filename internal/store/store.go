package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionNotFound is returned when a prompt has no snapshot with the
	// requested version number.
	ErrVersionNotFound = errors.New("version not found")
)

// PromptStoreIface exposes all prompt data operations.
// No handler MAY query the DB directly; all access goes through this interface.
type PromptStoreIface interface {
	Create(ctx context.Context, title, body, description string) (*Prompt, error)
	Insert(ctx context.Context, in NewPrompt) (*Prompt, error)
	GetByID(ctx context.Context, id string) (*Prompt, error)
	GetByTitle(ctx context.Context, title string) (*Prompt, error)
	List(ctx context.Context, opts ListOptions) ([]*Prompt, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id, title, body, description string) (*Prompt, error)
	Delete(ctx context.Context, id string) error
	SetFavorite(ctx context.Context, id string, favorite bool) (*Prompt, error)
	MarkUsed(ctx context.Context, id string) (*Prompt, error)
	SetTags(ctx context.Context, promptID string, tagNames []string) error
	ListTags(ctx context.Context, promptID string) ([]*Tag, error)
	ListVersions(ctx context.Context, promptID string) ([]*Version, error)
	GetVersion(ctx context.Context, promptID string, version int) (*Version, error)
	RestoreVersion(ctx context.Context, promptID string, version int) (*Prompt, error)
}

// TagStoreIface exposes tag operations.
type TagStoreIface interface {
	Upsert(ctx context.Context, name string) (*Tag, error)
	GetBySlug(ctx context.Context, slug string) (*Tag, error)
	ListAll(ctx context.Context) ([]*TagCount, error)
}

var (
	_ PromptStoreIface = (*PromptStore)(nil)
	_ TagStoreIface    = (*TagStore)(nil)
)

// isUniqueConstraintError reports whether err is a unique/primary key violation
// from any of the supported drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
