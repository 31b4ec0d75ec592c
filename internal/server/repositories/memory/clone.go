package memory

import "github.com/dmitrijs2005/recipebox/internal/server/models"

func cloneRecipe(r models.Recipe) models.Recipe {
	r.Description = clonePtr(r.Description)
	r.PrepTime = clonePtr(r.PrepTime)
	r.CookTime = clonePtr(r.CookTime)
	r.Rating = clonePtr(r.Rating)
	r.Notes = clonePtr(r.Notes)
	r.ImagePath = clonePtr(r.ImagePath)
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
