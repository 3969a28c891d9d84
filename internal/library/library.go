// Package library moves a prompt collection in and out of the database as a
// single YAML document, for backups and for sharing prompt sets.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joestump/joe-prompts/internal/store"
)

// FormatVersion is the document version written by Export.
const FormatVersion = 1

// ErrUnsupportedFormat is returned when a document declares a version this
// build cannot read.
var ErrUnsupportedFormat = errors.New("unsupported library format version")

// Document is the on-disk shape of an exported library.
type Document struct {
	Version int     `yaml:"version"`
	Prompts []Entry `yaml:"prompts"`
}

// Entry is one exported prompt. Body uses a literal block so multi-line
// templates stay readable.
type Entry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Favorite    bool     `yaml:"favorite,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Body        string   `yaml:"body"`
}

// Store is the subset of the prompt store used for import and export.
type Store interface {
	Insert(ctx context.Context, in store.NewPrompt) (*store.Prompt, error)
	GetByTitle(ctx context.Context, title string) (*store.Prompt, error)
	List(ctx context.Context, opts store.ListOptions) ([]*store.Prompt, error)
	Update(ctx context.Context, id, title, body, description string) (*store.Prompt, error)
	SetFavorite(ctx context.Context, id string, favorite bool) (*store.Prompt, error)
	SetTags(ctx context.Context, promptID string, tagNames []string) error
	ListTags(ctx context.Context, promptID string) ([]*store.Tag, error)
}

// Export writes every prompt, ordered by title, as a YAML document to w.
func Export(ctx context.Context, s Store, w io.Writer) (int, error) {
	prompts, err := s.List(ctx, store.ListOptions{Sort: store.SortTitle})
	if err != nil {
		return 0, fmt.Errorf("list prompts: %w", err)
	}

	doc := Document{Version: FormatVersion, Prompts: make([]Entry, 0, len(prompts))}
	for _, p := range prompts {
		tags, err := s.ListTags(ctx, p.ID)
		if err != nil {
			return 0, fmt.Errorf("list tags for %q: %w", p.Title, err)
		}
		e := Entry{Title: p.Title, Description: p.Description, Favorite: p.Favorite, Body: p.Body}
		for _, t := range tags {
			e.Tags = append(e.Tags, t.Name)
		}
		doc.Prompts = append(doc.Prompts, e)
	}

	node, err := literalBodies(doc)
	if err != nil {
		return 0, fmt.Errorf("encode library: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return 0, fmt.Errorf("encode library: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}
	return len(doc.Prompts), nil
}

// literalBodies renders the document as a node tree with multi-line bodies
// in literal block style.
func literalBodies(doc Document) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(doc); err != nil {
		return nil, err
	}
	var walk func(*yaml.Node)
	walk = func(node *yaml.Node) {
		if node.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(node.Content); i += 2 {
				k, v := node.Content[i], node.Content[i+1]
				if k.Value == "body" && v.Kind == yaml.ScalarNode && strings.Contains(v.Value, "\n") {
					v.Style = yaml.LiteralStyle
				}
			}
		}
		for _, c := range node.Content {
			walk(c)
		}
	}
	walk(&n)
	return &n, nil
}

// ImportOptions controls how existing prompts are treated.
type ImportOptions struct {
	// Overwrite replaces prompts whose title already exists instead of
	// skipping them. The replaced state is kept as a version.
	Overwrite bool
}

// Result counts what an import did.
type Result struct {
	Created int
	Updated int
	Skipped int
}

// Decode parses and checks a library document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{Version: FormatVersion}, nil
		}
		return nil, fmt.Errorf("decode library: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, doc.Version)
	}
	for i, e := range doc.Prompts {
		if err := store.ValidateTitle(e.Title); err != nil {
			return nil, fmt.Errorf("prompt %d: %w", i+1, err)
		}
		for _, tag := range e.Tags {
			if err := store.ValidateTagName(tag); err != nil {
				return nil, fmt.Errorf("prompt %d (%q): %w", i+1, e.Title, err)
			}
		}
	}
	return &doc, nil
}

// Import reads a library document from r and stores its prompts. Prompts are
// matched to existing ones by title.
func Import(ctx context.Context, s Store, r io.Reader, opts ImportOptions) (Result, error) {
	var res Result
	doc, err := Decode(r)
	if err != nil {
		return res, err
	}

	for _, e := range doc.Prompts {
		existing, err := s.GetByTitle(ctx, e.Title)
		switch {
		case errors.Is(err, store.ErrNotFound):
			_, err := s.Insert(ctx, store.NewPrompt{
				Title:       e.Title,
				Body:        e.Body,
				Description: e.Description,
				Favorite:    e.Favorite,
				Tags:        e.Tags,
			})
			if err != nil {
				return res, fmt.Errorf("create %q: %w", e.Title, err)
			}
			res.Created++
		case err != nil:
			return res, fmt.Errorf("look up %q: %w", e.Title, err)
		case !opts.Overwrite:
			res.Skipped++
		default:
			if _, err := s.Update(ctx, existing.ID, e.Title, e.Body, e.Description); err != nil {
				return res, fmt.Errorf("update %q: %w", e.Title, err)
			}
			if err := applyMeta(ctx, s, existing.ID, e); err != nil {
				return res, err
			}
			res.Updated++
		}
	}
	return res, nil
}

func applyMeta(ctx context.Context, s Store, id string, e Entry) error {
	if err := s.SetTags(ctx, id, e.Tags); err != nil {
		return fmt.Errorf("set tags for %q: %w", e.Title, err)
	}
	if _, err := s.SetFavorite(ctx, id, e.Favorite); err != nil {
		return fmt.Errorf("set favorite for %q: %w", e.Title, err)
	}
	return nil
}
