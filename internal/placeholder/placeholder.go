// Package placeholder parses, validates and substitutes bracketed
// placeholder expressions in prompt templates.
//
// Supported forms:
//
//	[Label]                  text field, no default
//	[Label=Default]          text field with a default
//	[Label=Opt1,Opt2,Opt3]   dropdown with an empty first option
//
// A default longer than 60 characters or containing a newline makes the
// placeholder a multiline text field. Every function in this package is pure
// and safe for concurrent use.
package placeholder

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// Kind classifies how a placeholder is presented for input.
type Kind string

const (
	KindText          Kind = "text"
	KindMultilineText Kind = "multiline_text"
	KindDropdown      Kind = "dropdown"
)

// multilineThreshold is the default length above which a text placeholder
// is presented as multiline input.
const multilineThreshold = 60

// Placeholder describes one distinct named slot in a template.
type Placeholder struct {
	Key          string   `json:"key" yaml:"key"`
	Kind         Kind     `json:"kind" yaml:"kind"`
	DefaultValue string   `json:"default_value" yaml:"default_value"`
	Options      []string `json:"options" yaml:"options"`
}

// PreviewSegment is one contiguous run of an annotated preview.
// IsFilled is only meaningful when IsPlaceholder is true.
type PreviewSegment struct {
	Text          string `json:"text"`
	IsPlaceholder bool   `json:"is_placeholder"`
	IsFilled      bool   `json:"is_filled"`
}

// exprRe matches the shortest run from a '[' to the next ']'. The body may
// span lines but never contains ']'.
var exprRe = regexp.MustCompile(`\[([^\]]*)\]`)

// expr is a single parsed occurrence of a placeholder expression.
type expr struct {
	key          string
	kind         Kind
	defaultValue string
	options      []string
}

// parseExpr classifies the inner text of one bracket expression. An
// expression with an empty key carries no default; callers decide whether to
// skip it.
func parseExpr(inner string) expr {
	label, rest, _ := strings.Cut(strings.TrimSpace(inner), "=")
	e := expr{key: strings.TrimSpace(label), kind: KindText}
	if e.key == "" {
		return e
	}

	parts := strings.Split(rest, ",")
	if len(parts) >= 2 {
		choices := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				choices = nil
				break
			}
			choices = append(choices, p)
		}
		if choices != nil {
			e.kind = KindDropdown
			e.options = append([]string{""}, choices...)
			return e
		}
	}

	e.defaultValue = strings.TrimSpace(rest)
	if utf16Len(rest) > multilineThreshold || strings.Contains(rest, "\n") {
		e.kind = KindMultilineText
	}
	return e
}

// resolve returns the value substituted for e: the caller's value when it is
// not blank, otherwise the local default. Dropdowns have no default.
func (e expr) resolve(values map[string]string) string {
	if v, ok := values[e.key]; ok && !isBlank(v) {
		return v
	}
	return e.defaultValue
}

// utf16Len measures s in UTF-16 code units, so characters outside the Basic
// Multilingual Plane (most emoji) count twice.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// replaceAll rewrites every expression in text with the string returned by fn,
// leaving the surrounding text untouched.
func replaceAll(text string, fn func(e expr) string) string {
	return exprRe.ReplaceAllStringFunc(text, func(match string) string {
		return fn(parseExpr(match[1 : len(match)-1]))
	})
}
