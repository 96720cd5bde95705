package sheet

import (
	"fmt"
	"regexp"
	"strings"
)

// CellRange addresses a rectangular block of cells. Rows and columns are
// 1-based; a zero RowCount or ColCount means "to the end of the sheet" in
// that dimension. A zero StartRow and StartCol addresses the entire sheet.
type CellRange struct {
	Sheet    string
	StartRow int
	StartCol int
	RowCount int
	ColCount int
}

// WholeSheet addresses every cell of one sheet. In A1 syntax that is the
// bare sheet name, which Values.Get and Values.Clear treat as the full
// used range.
func WholeSheet(name string) CellRange {
	return CellRange{Sheet: name}
}

// A1 converts the range to the Sheets API's A1 address syntax.
func (r CellRange) A1() string {
	var b strings.Builder

	if r.Sheet != "" {
		name := r.Sheet
		if strings.ContainsAny(name, " !'") {
			name = "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
		b.WriteString(name)
		if r.StartRow == 0 && r.StartCol == 0 {
			return b.String()
		}
		b.WriteString("!")
	}

	b.WriteString(ColumnLetter(r.StartCol))
	fmt.Fprintf(&b, "%d", r.StartRow)

	if r.RowCount > 0 && r.ColCount > 0 {
		b.WriteString(":")
		b.WriteString(ColumnLetter(r.StartCol + r.ColCount - 1))
		fmt.Fprintf(&b, "%d", r.StartRow+r.RowCount-1)
	}

	return b.String()
}

// ColumnLetter converts a 1-based column index to its letter address
// (1 -> A, 26 -> Z, 27 -> AA).
func ColumnLetter(col int) string {
	letter := ""
	for col > 0 {
		col--
		letter = string(rune('A'+(col%26))) + letter
		col /= 26
	}
	return letter
}

var spreadsheetURLPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
var spreadsheetIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// ParseSpreadsheetID extracts the spreadsheet id from a full Google Sheets
// URL, or validates and returns a bare id.
func ParseSpreadsheetID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("spreadsheet URL or id is empty")
	}

	if m := spreadsheetURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if strings.Contains(s, "/") || !spreadsheetIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid spreadsheet URL or id: %q", s)
	}
	return s, nil
}
