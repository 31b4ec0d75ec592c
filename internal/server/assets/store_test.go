package assets

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	files     map[string][]byte
	deleteErr error
}

func newMapStore(names ...string) *mapStore {
	m := &mapStore{files: map[string][]byte{}}
	for _, n := range names {
		m.files[n] = []byte(n)
	}
	return m
}

func (m *mapStore) Ensure(context.Context) error { return nil }

func (m *mapStore) List(ctx context.Context) ([]string, error) {
	all, _ := m.ListAll(ctx)
	var out []string
	for _, n := range all {
		if !strings.HasPrefix(n, ".") {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mapStore) ListAll(context.Context) ([]string, error) {
	var out []string
	for n := range m.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (m *mapStore) Read(_ context.Context, name string) ([]byte, error) {
	d, ok := m.files[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (m *mapStore) Write(_ context.Context, name string, data []byte) error {
	m.files[name] = data
	return nil
}

func (m *mapStore) Delete(_ context.Context, name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, name)
	return nil
}

func TestCleanOrphans_RemovesUnreferenced(t *testing.T) {
	s := newMapStore("keep.jpg", "orphan.png", "other.gif", KeepFile, ".DS_Store")

	n, err := CleanOrphans(context.Background(), s, []string{"/uploads/keep.jpg", "", `uploads\other.gif`})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, _ := s.ListAll(context.Background())
	assert.Equal(t, []string{KeepFile, "keep.jpg", "other.gif"}, names)
}

func TestCleanOrphans_NothingReferenced(t *testing.T) {
	s := newMapStore("a.jpg", "b.jpg")

	n, err := CleanOrphans(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.files)
}

func TestCleanOrphans_DeleteError(t *testing.T) {
	s := newMapStore("a.jpg")
	s.deleteErr = errors.New("read-only")

	n, err := CleanOrphans(context.Background(), s, nil)
	require.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.JPEG": "image/jpeg",
		"a.png":  "image/png",
		"a.webp": "image/webp",
		"a.gif":  "image/gif",
		"a.bmp":  "application/octet-stream",
		"noext":  "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentType(name), name)
	}
}
