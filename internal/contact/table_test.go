package contact

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromValues(t *testing.T) {
	values := [][]any{
		{"email", "name", "company"},
		{"a@x.com", "Ann", "Acme"},
		{"b@y.com", "Bob"}, // short row
		{"c@z.com", "Cyd", "Corp", "extra"},
	}

	tbl, err := FromValues(values)
	if err != nil {
		t.Fatalf("FromValues() error = %v", err)
	}

	if got, want := tbl.Columns, []string{"email", "name", "company"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Columns = %v, want %v", got, want)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(tbl.Rows))
	}
	if got := tbl.Get(1, "company"); got != "" {
		t.Errorf("short row company = %q, want empty", got)
	}
	if got := tbl.Get(2, "company"); got != "Corp" {
		t.Errorf("Get(2, company) = %q, want Corp", got)
	}
}

func TestFromValuesEmpty(t *testing.T) {
	if _, err := FromValues(nil); err == nil {
		t.Error("FromValues(nil) error = nil, want error")
	}
}

func TestEnsureColumns(t *testing.T) {
	tbl := New([]string{"email", "name"})
	tbl.Rows = append(tbl.Rows, Record{"email": "a@x.com", "name": "Ann"})

	changed := tbl.EnsureColumns("Timestamp", "Status", "email")
	if !changed {
		t.Error("EnsureColumns() = false, want true")
	}

	// New columns are appended, never inserted.
	want := []string{"email", "name", "Timestamp", "Status"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}

	if tbl.EnsureColumns("Timestamp") {
		t.Error("EnsureColumns() = true for existing column, want false")
	}
}

func TestSet(t *testing.T) {
	tbl := New([]string{"email"})
	tbl.Rows = append(tbl.Rows, Record{"email": "a@x.com"})

	if err := tbl.Set(0, "Status", "Sent"); err == nil {
		t.Error("Set() with unknown column error = nil, want error")
	}

	tbl.EnsureColumns("Status")
	if err := tbl.Set(0, "Status", "Sent"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := tbl.Get(0, "Status"); got != "Sent" {
		t.Errorf("Get(0, Status) = %q, want Sent", got)
	}

	if err := tbl.Set(5, "Status", "Sent"); err == nil {
		t.Error("Set() out of range error = nil, want error")
	}
}

func TestValuesPadsRows(t *testing.T) {
	tbl := New([]string{"email", "name"})
	tbl.Rows = append(tbl.Rows, Record{"email": "a@x.com"})
	tbl.EnsureColumns("Status")

	values := tbl.Values()
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
	for i, row := range values {
		if len(row) != 3 {
			t.Errorf("row %d width = %d, want 3", i, len(row))
		}
	}
	if values[1][2] != "" {
		t.Errorf("padded cell = %v, want empty string", values[1][2])
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	content := "email,name\na@x.com,Ann\nb@y.com,Bob\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write contact file: %v", err)
	}

	store := &FileStore{Path: path}
	tbl, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(tbl.Rows))
	}

	tbl.EnsureColumns("Status")
	if err := tbl.Set(0, "Status", "Sent"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Write(context.Background(), tbl); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	again, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() after Write() error = %v", err)
	}
	if got := again.Get(0, "Status"); got != "Sent" {
		t.Errorf("Status after round trip = %q, want Sent", got)
	}
	if got := again.Get(1, "Status"); got != "" {
		t.Errorf("row 1 Status = %q, want empty", got)
	}
}
