// Package recipes provides PostgreSQL-backed storage for recipes and their
// category links.
package recipes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

// PostgresRepository implements recipe storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts recipe as is, including id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	query := `
		INSERT INTO recipes (id, title, description, instructions, servings, prep_time, cook_time,
			rating, notes, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		recipe.ID, recipe.Title, recipe.Description, recipe.Instructions, recipe.Servings,
		recipe.PrepTime, recipe.CookTime, recipe.Rating, recipe.Notes, recipe.ImagePath,
		recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ConnectCategories links recipeID to every category id. An unknown
// category id fails on the foreign key.
func (r *PostgresRepository) ConnectCategories(ctx context.Context, recipeID string, categoryIDs []string) error {
	query := `INSERT INTO recipe_categories (recipe_id, category_id) VALUES ($1, $2)`
	for _, id := range categoryIDs {
		if _, err := r.db.ExecContext(ctx, query, recipeID, id); err != nil {
			return fmt.Errorf("db error: connect category %s: %w", id, err)
		}
	}
	return nil
}

// List returns every recipe, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	query := `
		SELECT id, title, description, instructions, servings, prep_time, cook_time,
			rating, notes, image_path, created_at, updated_at
		FROM recipes
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		var item models.Recipe
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.Instructions, &item.Servings,
			&item.PrepTime, &item.CookTime, &item.Rating, &item.Notes, &item.ImagePath,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListCategoryLinks(ctx context.Context) ([]models.RecipeCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recipe_id, category_id FROM recipe_categories ORDER BY recipe_id, category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipe categories: %w", err)
	}
	defer rows.Close()

	var result []models.RecipeCategory
	for rows.Next() {
		var link models.RecipeCategory
		if err := rows.Scan(&link.RecipeID, &link.CategoryID); err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListImagePaths returns the non-null image paths of all recipes.
func (r *PostgresRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT image_path FROM recipes WHERE image_path IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to select image paths: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAll removes every recipe. Ingredients and category links cascade.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
