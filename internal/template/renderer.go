package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/greenmice/sheetsend/internal/contact"
)

// placeholder pattern: {{field_name}}
var fieldPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// MissingFieldError reports a placeholder with no matching contact column.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template references missing field %q", e.Field)
}

// Render substitutes every {{field}} placeholder in s with the matching
// value from rec. Substitution is plain text: no HTML escaping, and
// substituted values are never re-scanned for placeholders, so rendering
// is idempotent. Fails with MissingFieldError naming the first placeholder
// that has no column in rec; a field present with an empty value is not
// missing. The record is never mutated.
func Render(s string, rec contact.Record) (string, error) {
	var missing *MissingFieldError

	out := fieldPattern.ReplaceAllStringFunc(s, func(match string) string {
		field := strings.TrimSpace(match[2 : len(match)-2])
		value, ok := rec[field]
		if !ok {
			if missing == nil {
				missing = &MissingFieldError{Field: field}
			}
			return match
		}
		return value
	})

	if missing != nil {
		return "", missing
	}
	return out, nil
}

// Fields lists the placeholder names referenced by s, in order of first
// appearance.
func Fields(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range fieldPattern.FindAllStringSubmatch(s, -1) {
		field := strings.TrimSpace(m[1])
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}
