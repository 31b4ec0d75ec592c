package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repomanager.RepositoryManager = (*Store)(nil)
	_ dbx.TxRunner                  = (*Store)(nil)
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Users(nil).Create(ctx, &models.User{ID: "u1", UserName: "Mikines", PasswordHash: "h"}))
	require.NoError(t, s.Categories(nil).Create(ctx, &models.Category{ID: "c1", Name: "Desserts"}))
	require.NoError(t, s.Recipes(nil).Create(ctx, &models.Recipe{ID: "r1", Title: "Pie", ImagePath: ptr("/uploads/p.jpg")}))
	require.NoError(t, s.Ingredients(nil).CreateMany(ctx, "r1", []*models.Ingredient{{ID: "i1", Name: "flour"}}))
	require.NoError(t, s.Recipes(nil).ConnectCategories(ctx, "r1", []string{"c1"}))
}

func TestUsers_CaseInsensitiveLookup(t *testing.T) {
	s := NewStore()
	seed(t, s)

	u, err := s.Users(nil).GetUserByLogin(context.Background(), "mikines")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.Users(nil).GetUserByLogin(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUniqueConstraints(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	assert.ErrorIs(t, s.Users(nil).Create(ctx, &models.User{ID: "u2", UserName: "Mikines"}), ErrDuplicateKey)
	assert.ErrorIs(t, s.Categories(nil).Create(ctx, &models.Category{ID: "c2", Name: "Desserts"}), ErrDuplicateKey)
	assert.ErrorIs(t, s.Recipes(nil).Create(ctx, &models.Recipe{ID: "r1"}), ErrDuplicateKey)
	assert.ErrorIs(t, s.Ingredients(nil).CreateMany(ctx, "r1", []*models.Ingredient{{ID: "i1"}}), ErrDuplicateKey)
}

func TestForeignKeys(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	assert.ErrorIs(t, s.Recipes(nil).ConnectCategories(ctx, "r1", []string{"missing"}), ErrForeignKey)
	assert.ErrorIs(t, s.Ingredients(nil).CreateMany(ctx, "nope", []*models.Ingredient{{ID: "i9"}}), ErrForeignKey)
}

func TestRecipeDeleteCascades(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	n, err := s.Recipes(nil).DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ings, _ := s.Ingredients(nil).List(ctx)
	links, _ := s.Recipes(nil).ListCategoryLinks(ctx)
	assert.Empty(t, ings)
	assert.Empty(t, links)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTx(ctx, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.Users(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if _, err := s.Categories(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	us, _ := s.Users(nil).List(ctx)
	cs, _ := s.Categories(nil).List(ctx)
	links, _ := s.Recipes(nil).ListCategoryLinks(ctx)
	assert.Len(t, us, 1)
	assert.Len(t, cs, 1)
	assert.Equal(t, []models.RecipeCategory{{RecipeID: "r1", CategoryID: "c1"}}, links)
}

func TestRunInTx_RollsBackOnPanic(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.RunInTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
			_, _ = s.Recipes(tx).DeleteAll(ctx)
			panic("kaboom")
		})
	})

	rs, _ := s.Recipes(nil).List(ctx)
	assert.Len(t, rs, 1)
}

func TestRunInTx_CanceledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunInTx(ctx, nil, func(context.Context, dbx.DBTX) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRecipes_ListOrderAndIsolation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(24 * time.Hour)

	require.NoError(t, s.Recipes(nil).Create(ctx, &models.Recipe{ID: "a", CreatedAt: old, Notes: ptr("x")}))
	require.NoError(t, s.Recipes(nil).Create(ctx, &models.Recipe{ID: "b", CreatedAt: recent}))

	got, err := s.Recipes(nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	*got[1].Notes = "changed"
	again, _ := s.Recipes(nil).List(ctx)
	assert.Equal(t, "x", *again[1].Notes)
}
