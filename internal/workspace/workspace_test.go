package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndRemove(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	path, err := m.Write("app-1.zip", []byte("data"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "data" {
		t.Fatalf("read back = %q, %v", data, err)
	}

	if err := m.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be gone")
	}
}

func TestWriteRejectsPathSeparators(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, name := range []string{"", "../escape.zip", "a/b.zip", `a\b.zip`} {
		if _, err := m.Write(name, []byte("x")); err == nil {
			t.Fatalf("Write(%q) should fail", name)
		}
	}
}

func TestRemoveRefusesOutsideRoot(t *testing.T) {
	root := t.TempDir()
	m, err := New(filepath.Join(root, "temp"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	outside := filepath.Join(root, "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := m.Remove(outside); err == nil {
		t.Fatal("expected refusal for path outside root")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("outside file touched: %v", err)
	}
	if err := m.Remove(m.Root()); err == nil {
		t.Fatal("expected refusal for the root itself")
	}
	if err := m.Remove(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty root")
	}
}
