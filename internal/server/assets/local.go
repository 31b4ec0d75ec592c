package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/filex"
)

// LocalStore keeps assets as files in Dir. Dir is fixed at construction,
// so a LocalStore is safe for concurrent use.
type LocalStore struct {
	Dir string
}

// NewLocalStore resolves a relative dir against the working directory.
func NewLocalStore(dir string) *LocalStore {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &LocalStore{Dir: dir}
}

// Ensure creates Dir when missing.
func (s *LocalStore) Ensure(context.Context) error {
	_, err := filex.EnsureDir(s.Dir)
	return err
}

// List follows symlinks; anything that does not resolve to a regular file is
// skipped. A missing directory yields an empty list.
func (s *LocalStore) List(context.Context) ([]string, error) {
	return s.list(false)
}

func (s *LocalStore) ListAll(context.Context) ([]string, error) {
	return s.list(true)
}

func (s *LocalStore) list(withHidden bool) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !withHidden && filex.IsHidden(e.Name()) {
			continue
		}
		info, err := os.Stat(filepath.Join(s.Dir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) Read(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *LocalStore) Write(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) path(name string) (string, error) {
	if !filex.IsPlainName(name) {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return filepath.Join(s.Dir, name), nil
}
