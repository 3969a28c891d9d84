package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SortOrder selects the ordering of List results.
type SortOrder string

const (
	SortTitle   SortOrder = "title"   // case-insensitive A→Z
	SortUpdated SortOrder = "updated" // most recently edited first
	SortCreated SortOrder = "created" // newest first
	SortUsed    SortOrder = "used"    // most used first
)

// ErrInvalidSort is returned for an unknown sort order.
var ErrInvalidSort = errors.New("sort must be one of: title, updated, created, used")

// ParseSortOrder converts user input into a SortOrder. Empty input selects
// SortUpdated.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortUpdated:
		return SortUpdated, nil
	case SortTitle:
		return SortTitle, nil
	case SortCreated:
		return SortCreated, nil
	case SortUsed:
		return SortUsed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

func (o SortOrder) orderBy() string {
	switch o {
	case SortTitle:
		return "LOWER(p.title) ASC, p.id ASC"
	case SortCreated:
		return "p.created_at DESC, p.id ASC"
	case SortUsed:
		return "p.use_count DESC, p.updated_at DESC, p.id ASC"
	default:
		return "p.updated_at DESC, p.id ASC"
	}
}

// likeEscaper makes LIKE wildcards in user input literal, with '!' as the
// escape character. A backslash is itself special in MySQL string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListOptions filters and pages List results. Zero values mean "no filter";
// Limit <= 0 returns every match.
type ListOptions struct {
	Query         string
	Tag           string // tag slug
	FavoritesOnly bool
	Sort          SortOrder
	Limit         int
	Offset        int
}

// List returns prompts matching opts. Query is a case-insensitive substring
// match over title, body and description.
func (s *PromptStore) List(ctx context.Context, opts ListOptions) ([]*Prompt, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = append(where, "(LOWER(p.title) LIKE ? ESCAPE '!' OR LOWER(p.body) LIKE ? ESCAPE '!' OR LOWER(p.description) LIKE ? ESCAPE '!')")
		args = append(args, pattern, pattern, pattern)
	}
	if opts.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM prompt_tags pt
			INNER JOIN tags t ON t.id = pt.tag_id
			WHERE pt.prompt_id = p.id AND t.slug = ?)`)
		args = append(args, opts.Tag)
	}
	if opts.FavoritesOnly {
		where = append(where, "p.favorite = ?")
		args = append(args, true)
	}

	var b strings.Builder
	b.WriteString("SELECT p.* FROM prompts p")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(opts.Sort.orderBy())
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, opts.Limit, max(opts.Offset, 0))
	}

	var prompts []*Prompt
	if err := s.db.SelectContext(ctx, &prompts, s.db.Rebind(b.String()), args...); err != nil {
		return nil, err
	}
	return prompts, nil
}
