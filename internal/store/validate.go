package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joestump/joe-prompts/internal/placeholder"
)

const maxTitleLength = 255

var (
	// ErrTitleEmpty is returned when a prompt title is blank.
	ErrTitleEmpty = errors.New("title must not be empty")

	// ErrTitleTooLong is returned when a prompt title exceeds 255 characters.
	ErrTitleTooLong = errors.New("title must be at most 255 characters")

	// ErrTagInvalid is returned when a tag name has no usable characters.
	ErrTagInvalid = errors.New("tag name must contain at least one letter or digit")
)

// ValidateTitle checks that a trimmed prompt title is present and fits the
// title column.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleEmpty
	}
	if n := utf8.RuneCountInString(title); n > maxTitleLength {
		return fmt.Errorf("%w: got %d", ErrTitleTooLong, n)
	}
	return nil
}

// ValidateTagName checks that name derives a non-empty slug.
func ValidateTagName(name string) error {
	if DeriveTagSlug(name) == "" {
		return fmt.Errorf("%w: %q", ErrTagInvalid, name)
	}
	return nil
}

// TemplateWarnings returns advisory placeholder warnings for a prompt body.
// Warnings never block a save.
func TemplateWarnings(body string) []string {
	w := placeholder.Validate(body)
	if w == nil {
		return []string{}
	}
	return w
}
