package documents

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/notesmith/autotitle/internal/errors"
)

func TestFSStore_ReadWriteRoundTrip(t *testing.T) {
	store := NewFSStore(t.TempDir())

	if err := store.WriteContent("note.md", "hello"); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	content, err := store.ReadContent("note.md")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if content != "hello" {
		t.Errorf("expected 'hello', got %q", content)
	}
}

func TestFSStore_RenameRefusesExistingTarget(t *testing.T) {
	root := t.TempDir()
	store := NewFSStore(root)

	if err := os.WriteFile(filepath.Join(root, "a.md"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.md"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.Rename("a.md", "b.md"); err == nil {
		t.Fatal("expected error renaming onto an existing file")
	}

	if err := store.Rename("a.md", "c.md"); err != nil {
		t.Fatalf("unexpected rename error: %v", err)
	}
	if store.Exists("a.md") || !store.Exists("c.md") {
		t.Error("rename did not move the file")
	}
}

func TestFSStore_RejectsEscapingPaths(t *testing.T) {
	store := NewFSStore(t.TempDir())

	for _, path := range []string{"../outside.md", "/etc/passwd", "a/../../outside.md"} {
		_, err := store.ReadContent(path)
		if err == nil {
			t.Errorf("expected error for path %q", path)
			continue
		}
		if kind := apperrors.KindOf(err); kind != apperrors.KindValidation {
			t.Errorf("expected validation error for %q, got %s", path, kind)
		}
	}
}

func TestFSStore_ExistsFalseForMissing(t *testing.T) {
	store := NewFSStore(t.TempDir())

	if store.Exists("missing.md") {
		t.Error("expected missing file to not exist")
	}
}
