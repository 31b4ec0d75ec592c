package users

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}
