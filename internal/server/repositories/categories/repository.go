package categories

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context) ([]*models.Category, error)
	DeleteAll(ctx context.Context) (int64, error)
}
