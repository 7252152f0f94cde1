package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager owns the temp files written for deploy attempts (artifact
// archives and generated manifests) under a common root.
type Manager struct {
	root string
}

// New ensures the temp root exists and is accessible.
func New(root string) (*Manager, error) {
	if root == "" {
		return nil, fmt.Errorf("temp root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the managed directory.
func (m *Manager) Root() string {
	return m.root
}

// Write stores data under the given file name inside the root and
// returns the full path.
func (m *Manager) Write(name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid temp file name %q", name)
	}
	path := filepath.Join(m.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}

// Remove deletes a previously written file. It refuses paths outside
// the managed root.
func (m *Manager) Remove(path string) error {
	if path == "" {
		return nil
	}
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove path outside temp root")
	}
	return os.Remove(path)
}
