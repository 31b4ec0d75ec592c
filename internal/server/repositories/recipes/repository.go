package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	ConnectCategories(ctx context.Context, recipeID string, categoryIDs []string) error
	List(ctx context.Context) ([]*models.Recipe, error)
	ListCategoryLinks(ctx context.Context) ([]models.RecipeCategory, error)
	ListImagePaths(ctx context.Context) ([]string, error)
	DeleteAll(ctx context.Context) (int64, error)
}
