package ingredients

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	CreateMany(ctx context.Context, recipeID string, items []*models.Ingredient) error
	List(ctx context.Context) ([]*models.Ingredient, error)
	DeleteAll(ctx context.Context) (int64, error)
}
