package documents

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/notesmith/autotitle/internal/errors"
)

// Store is the document collaborator the retitle pipeline needs: read and
// write content, rename, and check for path collisions. The core owns no
// on-disk format beyond this.
type Store interface {
	ReadContent(path string) (string, error)
	WriteContent(path, content string) error
	// Rename fails if the target already exists; callers disambiguate
	// collisions before calling.
	Rename(oldPath, newPath string) error
	Exists(path string) bool
}

// FSStore is a filesystem-backed Store rooted at a directory. All paths are
// relative to the root; escaping it is rejected.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at root.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", apperrors.Validation("path %q escapes the documents root", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

// ReadContent returns the file's content as a string.
func (s *FSStore) ReadContent(path string) (string, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", apperrors.Validation("read %s: %v", path, err)
	}

	return string(data), nil
}

// WriteContent replaces the file's content.
func (s *FSStore) WriteContent(path, content string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return apperrors.Validation("write %s: %v", path, err)
	}

	return nil
}

// Rename moves the file, refusing to overwrite an existing target.
func (s *FSStore) Rename(oldPath, newPath string) error {
	resolvedOld, err := s.resolve(oldPath)
	if err != nil {
		return err
	}
	resolvedNew, err := s.resolve(newPath)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(resolvedNew); statErr == nil {
		return apperrors.Validation("rename target %s already exists", newPath)
	}

	if err := os.Rename(resolvedOld, resolvedNew); err != nil {
		return apperrors.Validation("rename %s: %v", oldPath, err)
	}

	return nil
}

// Exists reports whether a path exists under the root.
func (s *FSStore) Exists(path string) bool {
	resolved, err := s.resolve(path)
	if err != nil {
		return false
	}

	_, statErr := os.Stat(resolved)
	return statErr == nil
}

var _ Store = (*FSStore)(nil)
