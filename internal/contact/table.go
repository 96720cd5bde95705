package contact

import (
	"fmt"
	"strings"
)

// Record holds one row's values keyed by column name. Columns absent from
// the row read as empty string.
type Record map[string]string

// Table is an ordered contact table: a shared column list plus one Record
// per row. Row identity is the row's position, which stays stable for the
// lifetime of a campaign run.
type Table struct {
	Columns []string
	Rows    []Record
}

// New creates an empty table with the given header.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// FromValues builds a table from raw sheet values: the first row is the
// header, the rest are data rows. Short rows are padded with empty strings,
// values beyond the header are dropped.
func FromValues(values [][]any) (*Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("contact: no rows (missing header)")
	}

	header := make([]string, 0, len(values[0]))
	for _, v := range values[0] {
		header = append(header, strings.TrimSpace(fmt.Sprint(v)))
	}

	t := New(header)
	for _, raw := range values[1:] {
		rec := make(Record, len(header))
		for i, col := range t.Columns {
			if i < len(raw) {
				rec[col] = fmt.Sprint(raw[i])
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// HasColumn reports whether the table header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumns appends any missing columns to the end of the header.
// Existing columns keep their position. Returns true if the header changed.
func (t *Table) EnsureColumns(names ...string) bool {
	changed := false
	for _, name := range names {
		if !t.HasColumn(name) {
			t.Columns = append(t.Columns, name)
			changed = true
		}
	}
	return changed
}

// Get returns the value at (row, column), or empty string if the row does
// not carry the column.
func (t *Table) Get(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][column]
}

// Set writes a value at (row, column). The column must already exist in
// the header; use EnsureColumns first for new log columns.
func (t *Table) Set(row int, column, value string) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("contact: row %d out of range (%d rows)", row, len(t.Rows))
	}
	if !t.HasColumn(column) {
		return fmt.Errorf("contact: unknown column %q", column)
	}
	if t.Rows[row] == nil {
		t.Rows[row] = make(Record)
	}
	t.Rows[row][column] = value
	return nil
}

// Values flattens the table back into header + data rows, every row padded
// to the full header width. This is the shape the sheet store writes in a
// single batch.
func (t *Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	out = append(out, header)

	for _, rec := range t.Rows {
		row := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = rec[c]
		}
		out = append(out, row)
	}
	return out
}
