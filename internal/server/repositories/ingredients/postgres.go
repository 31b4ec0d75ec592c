// Package ingredients provides the PostgreSQL-backed ingredient repository.
package ingredients

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateMany inserts items under recipeID, keeping their ids. The RecipeID
// carried by an item is ignored.
func (r *PostgresRepository) CreateMany(ctx context.Context, recipeID string, items []*models.Ingredient) error {
	query := `INSERT INTO ingredients (id, name, amount, unit, recipe_id) VALUES ($1, $2, $3, $4, $5)`
	for _, it := range items {
		if _, err := r.db.ExecContext(ctx, query, it.ID, it.Name, it.Amount, it.Unit, recipeID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount, unit, recipe_id FROM ingredients ORDER BY recipe_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select ingredients: %w", err)
	}
	defer rows.Close()

	var result []*models.Ingredient
	for rows.Next() {
		var item models.Ingredient
		if err := rows.Scan(&item.ID, &item.Name, &item.Amount, &item.Unit, &item.RecipeID); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ingredients`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
