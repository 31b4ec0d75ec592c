package models

import "time"

// Recipe is the main catalogue entity. Optional columns are pointers.
type Recipe struct {
	ID           string
	Title        string
	Description  *string
	Instructions string
	Servings     int
	PrepTime     *int
	CookTime     *int
	Rating       *int
	Notes        *string
	ImagePath    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ingredient belongs to exactly one recipe and is deleted with it.
type Ingredient struct {
	ID       string
	Name     string
	Amount   float64
	Unit     string
	RecipeID string
}

// RecipeCategory is one row of the recipe/category many-to-many relation.
type RecipeCategory struct {
	RecipeID   string
	CategoryID string
}
