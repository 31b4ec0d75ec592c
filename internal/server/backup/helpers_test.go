package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var (
	fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	created  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	updated  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

type env struct {
	store    *memory.Store
	assets   *assets.LocalStore
	exporter *Exporter
	importer *Importer
	service  *Service
	paths    [][]string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:  memory.NewStore(),
		assets: assets.NewLocalStore(filepath.Join(t.TempDir(), "uploads")),
	}
	e.exporter = NewExporter(e.store, e.store, e.assets)
	e.exporter.now = func() time.Time { return fixedNow }
	e.importer = NewImporter(e.store, e.store, e.assets, InvalidatorFunc(func(_ context.Context, paths ...string) {
		e.paths = append(e.paths, paths)
	}))
	e.importer.now = func() time.Time { return fixedNow }
	e.service = NewService(e.exporter, e.importer, logging.Nop())
	return e
}

// scenarioDocument is two categories, one recipe with one ingredient linked
// to c1, and one user.
func scenarioDocument() *Document {
	return &Document{
		Version:     1,
		GeneratedAt: fixedNow,
		Categories: []Category{
			{ID: "c1", Name: "Postres"},
			{ID: "c2", Name: "Cenas"},
		},
		Users: []User{
			{ID: "u1", Username: "mikines", Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		},
		Recipes: []Recipe{{
			ID:           "r1",
			Title:        "Tarta",
			Instructions: "Hornear",
			Servings:     4,
			Rating:       ptr(5),
			ImagePath:    ptr("/uploads/photo.jpg"),
			CreatedAt:    created,
			UpdatedAt:    updated,
			Ingredients:  []Ingredient{{ID: "i1", Name: "Harina", Amount: 200, Unit: "g"}},
			Categories:   []CategoryRef{{ID: "c1"}},
		}},
	}
}

func seedStore(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Users(nil).Create(ctx, &models.User{ID: "old-u", UserName: "old", PasswordHash: "x"}))
	require.NoError(t, s.Categories(nil).Create(ctx, &models.Category{ID: "old-c", Name: "Old"}))
	require.NoError(t, s.Recipes(nil).Create(ctx, &models.Recipe{ID: "old-r", Title: "Old", CreatedAt: created, UpdatedAt: created}))
	require.NoError(t, s.Ingredients(nil).CreateMany(ctx, "old-r", []*models.Ingredient{{ID: "old-i", Name: "salt"}}))
	require.NoError(t, s.Recipes(nil).ConnectCategories(ctx, "old-r", []string{"old-c"}))
}

type counts struct {
	users, categories, recipes, ingredients, links int
}

func countRows(t *testing.T, s *memory.Store) counts {
	t.Helper()
	ctx := context.Background()
	us, err := s.Users(nil).List(ctx)
	require.NoError(t, err)
	cs, err := s.Categories(nil).List(ctx)
	require.NoError(t, err)
	rs, err := s.Recipes(nil).List(ctx)
	require.NoError(t, err)
	is, err := s.Ingredients(nil).List(ctx)
	require.NoError(t, err)
	ls, err := s.Recipes(nil).ListCategoryLinks(ctx)
	require.NoError(t, err)
	return counts{len(us), len(cs), len(rs), len(is), len(ls)}
}

type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(e Event) { r.events = append(r.events, e) }

func (r *recorder) phases() []Phase {
	var out []Phase
	for _, e := range r.events {
		if len(out) == 0 || out[len(out)-1] != e.Phase {
			out = append(out, e.Phase)
		}
	}
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// failingStore lets writes through until failAfter files were written.
type failingStore struct {
	assets.Store
	failAfter int
	written   int
}

func (f *failingStore) Write(ctx context.Context, name string, data []byte) error {
	if f.written >= f.failAfter {
		return errors.New("disk full")
	}
	f.written++
	return f.Store.Write(ctx, name, data)
}
