// Package memory keeps the whole recipe catalogue in process memory. It
// implements repomanager.RepositoryManager and dbx.TxRunner so the server can
// run without PostgreSQL (the memory:// DSN) and services can be tested
// against real constraint behaviour.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/users"
)

var (
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")
	ErrForeignKey   = errors.New("violates foreign key constraint")
)

type state struct {
	users       map[string]models.User
	categories  map[string]models.Category
	recipes     map[string]models.Recipe
	ingredients map[string]models.Ingredient
	links       map[models.RecipeCategory]struct{}
}

func newState() state {
	return state{
		users:       map[string]models.User{},
		categories:  map[string]models.Category{},
		recipes:     map[string]models.Recipe{},
		ingredients: map[string]models.Ingredient{},
		links:       map[models.RecipeCategory]struct{}{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.recipes {
		c.recipes[k] = v
	}
	for k, v := range s.ingredients {
		c.ingredients[k] = v
	}
	for k := range s.links {
		c.links[k] = struct{}{}
	}
	return c
}

// Store is safe for concurrent use. Transactions are fully serialized.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// RunMigrations is a no-op; the store has no schema.
func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

// RunInTx runs fn exclusively. On error or panic every change made by fn is
// discarded.
func (s *Store) RunInTx(ctx context.Context, _ *sql.TxOptions, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(ctx, nil)
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
}

func (s *Store) Users(dbx.DBTX) users.Repository             { return (*userRepo)(s) }
func (s *Store) Categories(dbx.DBTX) categories.Repository   { return (*categoryRepo)(s) }
func (s *Store) Recipes(dbx.DBTX) recipes.Repository         { return (*recipeRepo)(s) }
func (s *Store) Ingredients(dbx.DBTX) ingredients.Repository { return (*ingredientRepo)(s) }

type userRepo Store

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.st.users[u.ID]; ok {
		return fmt.Errorf("db error: users.id %s: %w", u.ID, ErrDuplicateKey)
	}
	for _, existing := range r.st.users {
		if existing.UserName == u.UserName {
			return fmt.Errorf("db error: users.username %s: %w", u.UserName, ErrDuplicateKey)
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.UserName, login) {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) List(context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		item := u
		result = append(result, &item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.st.users))
	r.st.users = map[string]models.User{}
	return n, nil
}

type categoryRepo Store

func (r *categoryRepo) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.st.categories[c.ID]; ok {
		return fmt.Errorf("db error: categories.id %s: %w", c.ID, ErrDuplicateKey)
	}
	for _, existing := range r.st.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("db error: categories.name %s: %w", c.Name, ErrDuplicateKey)
		}
	}
	r.st.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) List(context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Category, 0, len(r.st.categories))
	for _, c := range r.st.categories {
		item := c
		result = append(result, &item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *categoryRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.st.categories))
	r.st.categories = map[string]models.Category{}
	for link := range r.st.links {
		delete(r.st.links, link)
	}
	return n, nil
}

type recipeRepo Store

func (r *recipeRepo) Create(_ context.Context, rec *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.st.recipes[rec.ID]; ok {
		return fmt.Errorf("db error: recipes.id %s: %w", rec.ID, ErrDuplicateKey)
	}
	r.st.recipes[rec.ID] = cloneRecipe(*rec)
	return nil
}

func (r *recipeRepo) ConnectCategories(_ context.Context, recipeID string, categoryIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.st.recipes[recipeID]; !ok {
		return fmt.Errorf("db error: recipe %s: %w", recipeID, ErrForeignKey)
	}
	for _, id := range categoryIDs {
		if _, ok := r.st.categories[id]; !ok {
			return fmt.Errorf("db error: connect category %s: %w", id, ErrForeignKey)
		}
		link := models.RecipeCategory{RecipeID: recipeID, CategoryID: id}
		if _, ok := r.st.links[link]; ok {
			return fmt.Errorf("db error: recipe_categories %s/%s: %w", recipeID, id, ErrDuplicateKey)
		}
		r.st.links[link] = struct{}{}
	}
	return nil
}

func (r *recipeRepo) List(context.Context) ([]*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Recipe, 0, len(r.st.recipes))
	for _, rec := range r.st.recipes {
		item := cloneRecipe(rec)
		result = append(result, &item)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *recipeRepo) ListCategoryLinks(context.Context) ([]models.RecipeCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.RecipeCategory, 0, len(r.st.links))
	for link := range r.st.links {
		result = append(result, link)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RecipeID != result[j].RecipeID {
			return result[i].RecipeID < result[j].RecipeID
		}
		return result[i].CategoryID < result[j].CategoryID
	})
	return result, nil
}

func (r *recipeRepo) ListImagePaths(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []string
	for _, rec := range r.st.recipes {
		if rec.ImagePath != nil {
			result = append(result, *rec.ImagePath)
		}
	}
	sort.Strings(result)
	return result, nil
}

// DeleteAll removes recipes together with their ingredients and links.
func (r *recipeRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.st.recipes))
	r.st.recipes = map[string]models.Recipe{}
	r.st.ingredients = map[string]models.Ingredient{}
	r.st.links = map[models.RecipeCategory]struct{}{}
	return n, nil
}

type ingredientRepo Store

func (r *ingredientRepo) CreateMany(_ context.Context, recipeID string, items []*models.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.st.recipes[recipeID]; !ok {
		return fmt.Errorf("db error: ingredients.recipe_id %s: %w", recipeID, ErrForeignKey)
	}
	for _, it := range items {
		if _, ok := r.st.ingredients[it.ID]; ok {
			return fmt.Errorf("db error: ingredients.id %s: %w", it.ID, ErrDuplicateKey)
		}
		stored := *it
		stored.RecipeID = recipeID
		r.st.ingredients[it.ID] = stored
	}
	return nil
}

func (r *ingredientRepo) List(context.Context) ([]*models.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.Ingredient, 0, len(r.st.ingredients))
	for _, it := range r.st.ingredients {
		item := it
		result = append(result, &item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RecipeID != result[j].RecipeID {
			return result[i].RecipeID < result[j].RecipeID
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *ingredientRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.st.ingredients))
	r.st.ingredients = map[string]models.Ingredient{}
	return n, nil
}
