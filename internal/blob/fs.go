package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SchemeFile is the scheme served by FSStore.
const SchemeFile = "file"

// FSStore keeps objects on local disk under Root/namespace/key.
type FSStore struct {
	Root string
}

// NewFSStore creates a store rooted at root.
func NewFSStore(root string) *FSStore {
	return &FSStore{Root: root}
}

func (s *FSStore) path(loc Locator) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, loc.Namespace, filepath.FromSlash(loc.Key))
	if !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes store root", ErrInvalidLocator, loc)
	}
	return p, nil
}

// Get reads the object at loc.
func (s *FSStore) Get(ctx context.Context, loc Locator) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(loc)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, loc)
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	return data, nil
}

// Put writes data to loc atomically via a temp file in the same directory.
func (s *FSStore) Put(ctx context.Context, loc Locator, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(loc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, loc, err)
	}
	return nil
}

var _ Store = (*FSStore)(nil)
