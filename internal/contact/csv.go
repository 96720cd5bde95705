package contact

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore reads and writes a contact table as a local CSV file. It is the
// file-based alternative to the Google Sheet source and follows the same
// full-rewrite persistence strategy: the table is written whole to a temp
// file and renamed into place, so a failed write never leaves a
// half-updated table behind.
type FileStore struct {
	Path string
}

// Read loads the CSV file into a table. The first record is the header.
func (s *FileStore) Read(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contact file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact file: %w", err)
	}

	values := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		values = append(values, row)
	}
	return FromValues(values)
}

// Write persists the table back to the CSV file atomically.
func (s *FileStore) Write(ctx context.Context, t *Table) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".contacts-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp contact file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, row := range t.Values() {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write contact file: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write contact file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp contact file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace contact file: %w", err)
	}
	return nil
}
