// Package backup exports the whole recipe catalogue into a zip archive and
// restores it back. Restore replaces every table in one transaction and then
// copies the archived images into the asset store.
package backup

import (
	"time"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

// FormatVersion is written into every exported document. Restore accepts
// documents up to this version.
const FormatVersion = 1

// Document is the content of backup.json.
type Document struct {
	Version     int        `json:"version"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Categories  []Category `json:"categories" validate:"dive"`
	Users       []User     `json:"users,omitempty" validate:"dive"`
	Recipes     []Recipe   `json:"recipes" validate:"dive"`
}

type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// CategoryRef links a recipe to a document category. Only ID is used on
// restore.
type CategoryRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name,omitempty"`
}

// User carries the stored bcrypt hash under "password". It is restored as is.
type User struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Recipe struct {
	ID           string        `json:"id" validate:"required"`
	Title        string        `json:"title" validate:"required"`
	Description  *string       `json:"description"`
	Instructions string        `json:"instructions"`
	Servings     int           `json:"servings" validate:"gte=0"`
	PrepTime     *int          `json:"prepTime" validate:"omitempty,gte=0"`
	CookTime     *int          `json:"cookTime" validate:"omitempty,gte=0"`
	Rating       *int          `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Notes        *string       `json:"notes"`
	ImagePath    *string       `json:"imagePath"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Ingredients  []Ingredient  `json:"ingredients" validate:"dive"`
	Categories   []CategoryRef `json:"categories" validate:"dive"`
}

type Ingredient struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Unit     string  `json:"unit"`
	RecipeID string  `json:"recipeId,omitempty"`
}

func (c Category) model() *models.Category {
	return &models.Category{ID: c.ID, Name: c.Name}
}

func (u User) model() *models.User {
	return &models.User{ID: u.ID, UserName: u.Username, PasswordHash: u.Password}
}

// model converts r. Missing timestamps default to now, like the column
// defaults do.
func (r Recipe) model(now time.Time) *models.Recipe {
	m := &models.Recipe{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Servings:     r.Servings,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Rating:       r.Rating,
		Notes:        r.Notes,
		ImagePath:    r.ImagePath,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	return m
}

func (r Recipe) ingredientModels() []*models.Ingredient {
	out := make([]*models.Ingredient, 0, len(r.Ingredients))
	for _, it := range r.Ingredients {
		out = append(out, &models.Ingredient{ID: it.ID, Name: it.Name, Amount: it.Amount, Unit: it.Unit, RecipeID: r.ID})
	}
	return out
}

// categoryIDs returns the linked category ids in document order, each once.
func (r Recipe) categoryIDs() []string {
	out := make([]string, 0, len(r.Categories))
	seen := make(map[string]struct{}, len(r.Categories))
	for _, c := range r.Categories {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c.ID)
	}
	return out
}

func recipeFromModel(m *models.Recipe) Recipe {
	return Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Instructions: m.Instructions,
		Servings:     m.Servings,
		PrepTime:     m.PrepTime,
		CookTime:     m.CookTime,
		Rating:       m.Rating,
		Notes:        m.Notes,
		ImagePath:    m.ImagePath,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		Ingredients:  []Ingredient{},
		Categories:   []CategoryRef{},
	}
}
