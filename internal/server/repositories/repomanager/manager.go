package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/categories"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Recipes(db dbx.DBTX) recipes.Repository
	Ingredients(db dbx.DBTX) ingredients.Repository
}
