package placeholder

import (
	"fmt"
	"strings"
)

// Extract returns one Placeholder per distinct non-empty key in order of first
// appearance. Later occurrences of a key never override the first.
func Extract(text string) []Placeholder {
	matches := exprRe.FindAllStringSubmatch(text, -1)
	out := make([]Placeholder, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		e := parseExpr(m[1])
		if e.key == "" || seen[e.key] {
			continue
		}
		seen[e.key] = true
		p := Placeholder{Key: e.key, Kind: e.kind, DefaultValue: e.defaultValue}
		if e.kind == KindDropdown {
			p.Options = e.options
		} else {
			p.Options = []string{}
		}
		out = append(out, p)
	}
	return out
}

// Fill substitutes every expression in text. Each occurrence is resolved on
// its own: a non-blank entry in values wins, otherwise the occurrence's inline
// default, otherwise the empty string.
func Fill(text string, values map[string]string) string {
	return replaceAll(text, func(e expr) string {
		return e.resolve(values)
	})
}

// Preview renders text like Fill but shows unresolved placeholders as their
// key in double quotes.
func Preview(text string, values map[string]string) string {
	return replaceAll(text, func(e expr) string {
		if v := e.resolve(values); !isBlank(v) {
			return v
		}
		return `"` + e.key + `"`
	})
}

// AnnotatedPreview splits the rendered template into literal and placeholder
// segments. Unresolved placeholders render as "[key]".
func AnnotatedPreview(text string, values map[string]string) []PreviewSegment {
	locs := exprRe.FindAllStringSubmatchIndex(text, -1)
	segments := make([]PreviewSegment, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			segments = append(segments, PreviewSegment{Text: text[last:loc[0]]})
		}
		e := parseExpr(text[loc[2]:loc[3]])
		v := e.resolve(values)
		seg := PreviewSegment{IsPlaceholder: true, IsFilled: !isBlank(v)}
		if seg.IsFilled {
			seg.Text = v
		} else {
			seg.Text = "[" + e.key + "]"
		}
		segments = append(segments, seg)
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, PreviewSegment{Text: text[last:]})
	}
	return segments
}

// Validate reports advisory problems with the template. It never fails; an
// empty result means no problems were found.
func Validate(text string) []string {
	var warnings []string
	open, closing := strings.Count(text, "["), strings.Count(text, "]")
	if open != closing {
		warnings = append(warnings, UnbalancedWarning(open, closing))
	}
	for _, m := range exprRe.FindAllStringSubmatch(text, -1) {
		inner := strings.TrimSpace(m[1])
		switch {
		case inner == "":
			warnings = append(warnings, EmptyWarning)
		case strings.HasPrefix(inner, "="):
			warnings = append(warnings, MissingLabelWarning(m[0]))
		}
	}
	return warnings
}

// EmptyWarning is reported for every "[]" expression.
const EmptyWarning = "Empty placeholder found: []"

// UnbalancedWarning formats the bracket count mismatch warning.
func UnbalancedWarning(open, closing int) string {
	return fmt.Sprintf("Unbalanced brackets: %d opening '[' and %d closing ']'", open, closing)
}

// MissingLabelWarning formats the warning for an expression without a label.
func MissingLabelWarning(match string) string {
	return fmt.Sprintf("Placeholder without a label: %q", match)
}

// HasPlaceholders reports whether text contains at least one expression.
func HasPlaceholders(text string) bool {
	return exprRe.MatchString(text)
}

// Count returns the number of expressions in text, duplicates and empty keys
// included.
func Count(text string) int {
	return len(exprRe.FindAllStringIndex(text, -1))
}
