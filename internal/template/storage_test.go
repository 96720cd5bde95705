package template

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func testDB(t *testing.T) *bolt.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStorageCreateGet(t *testing.T) {
	storage, err := NewStorage(testDB(t))
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	ctx := context.Background()

	tmpl := &Template{
		Name:    "welcome",
		Subject: "Hello {{name}}",
		HTML:    "<p>Hi {{name}}</p>",
	}
	if err := storage.Create(ctx, tmpl); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tmpl.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if tmpl.Version != 1 {
		t.Errorf("Version = %d, want 1", tmpl.Version)
	}

	got, err := storage.GetByName(ctx, "welcome")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByName() = nil, want template")
	}
	if got.HTML != tmpl.HTML {
		t.Errorf("HTML = %q, want %q", got.HTML, tmpl.HTML)
	}

	// Name uniqueness
	dup := &Template{Name: "welcome", HTML: "<p>other</p>"}
	if err := storage.Create(ctx, dup); err == nil {
		t.Error("Create() duplicate name error = nil, want error")
	}
}

func TestStorageCreateValidation(t *testing.T) {
	storage, err := NewStorage(testDB(t))
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Create(ctx, &Template{HTML: "<p>x</p>"}); err == nil {
		t.Error("Create() without name error = nil, want error")
	}
	if err := storage.Create(ctx, &Template{Name: "x"}); err == nil {
		t.Error("Create() without body error = nil, want error")
	}
}

func TestStorageUpdate(t *testing.T) {
	storage, err := NewStorage(testDB(t))
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Create(ctx, &Template{Name: "reminder", HTML: "<p>v1</p>"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := storage.Update(ctx, &Template{Name: "reminder", HTML: "<p>v2</p>"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := storage.GetByName(ctx, "reminder")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.HTML != "<p>v2</p>" {
		t.Errorf("HTML = %q, want <p>v2</p>", got.HTML)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}

	if err := storage.Update(ctx, &Template{Name: "absent", HTML: "x"}); err == nil {
		t.Error("Update() unknown name error = nil, want error")
	}
}

func TestStorageListDelete(t *testing.T) {
	storage, err := NewStorage(testDB(t))
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha"} {
		if err := storage.Create(ctx, &Template{Name: name, HTML: "<p>x</p>"}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	list, err := storage.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Errorf("List() order wrong: %+v", list)
	}

	if err := storage.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := storage.GetByName(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got != nil {
		t.Error("GetByName() after delete != nil")
	}

	// Deleting again is a no-op.
	if err := storage.Delete(ctx, "alpha"); err != nil {
		t.Errorf("Delete() absent error = %v", err)
	}
}
