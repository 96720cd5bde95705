package template

import (
	"time"
)

// Template is a named mail-merge template: a subject line and an HTML body,
// each carrying zero or more {{field}} placeholders resolved from a contact
// row at send time. Stored templates are a convenience cache; campaigns can
// also run from a raw HTML file.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	HTML        string    `json:"html"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Placeholders returns the union of fields referenced by the subject and
// body, in first-seen order.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range append(Fields(t.Subject), Fields(t.HTML)...) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
