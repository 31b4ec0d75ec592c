package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
)

// Exporter reads the catalogue and the asset store.
type Exporter struct {
	runner dbx.TxRunner
	repos  repomanager.RepositoryManager
	store  assets.Store
	codec  Codec
	now    func() time.Time
}

func NewExporter(runner dbx.TxRunner, repos repomanager.RepositoryManager, store assets.Store) *Exporter {
	return &Exporter{runner: runner, repos: repos, store: store, now: time.Now}
}

// Export returns every category, user and recipe read in one read-only
// snapshot transaction. Any read error fails the whole export.
func (e *Exporter) Export(ctx context.Context) (*Document, error) {
	doc := &Document{
		Version:    FormatVersion,
		Categories: []Category{},
		Users:      []User{},
		Recipes:    []Recipe{},
	}

	err := e.runner.RunInTx(ctx, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		cats, err := e.repos.Categories(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		users, err := e.repos.Users(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		recipes, err := e.repos.Recipes(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list recipes: %w", err)
		}
		ings, err := e.repos.Ingredients(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("list ingredients: %w", err)
		}
		links, err := e.repos.Recipes(tx).ListCategoryLinks(ctx)
		if err != nil {
			return fmt.Errorf("list recipe categories: %w", err)
		}

		assemble(doc, cats, users, recipes, ings, links)
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc.GeneratedAt = e.now().UTC()
	return doc, nil
}

func assemble(doc *Document, cats []*models.Category, users []*models.User, recipes []*models.Recipe,
	ings []*models.Ingredient, links []models.RecipeCategory) {

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		doc.Categories = append(doc.Categories, Category{ID: c.ID, Name: c.Name})
		names[c.ID] = c.Name
	}
	for _, u := range users {
		doc.Users = append(doc.Users, User{ID: u.ID, Username: u.UserName, Password: u.PasswordHash})
	}

	index := make(map[string]int, len(recipes))
	for _, r := range recipes {
		index[r.ID] = len(doc.Recipes)
		doc.Recipes = append(doc.Recipes, recipeFromModel(r))
	}
	for _, it := range ings {
		i, ok := index[it.RecipeID]
		if !ok {
			continue
		}
		doc.Recipes[i].Ingredients = append(doc.Recipes[i].Ingredients, Ingredient{
			ID: it.ID, Name: it.Name, Amount: it.Amount, Unit: it.Unit, RecipeID: it.RecipeID,
		})
	}
	for _, l := range links {
		i, ok := index[l.RecipeID]
		if !ok {
			continue
		}
		doc.Recipes[i].Categories = append(doc.Recipes[i].Categories, CategoryRef{ID: l.CategoryID, Name: names[l.CategoryID]})
	}
}

// CollectAssets loads every file of the asset store as uploads/<name>.
// Image paths of recipes are not cross-checked.
func (e *Exporter) CollectAssets(ctx context.Context) ([]Asset, error) {
	names, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	out := make([]Asset, 0, len(names))
	for _, name := range names {
		data, err := e.store.Read(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", name, err)
		}
		out = append(out, Asset{Name: assetEntryName(name), Data: data})
	}
	return out, nil
}

// BuildArchive is Export plus CollectAssets packed by the codec.
func (e *Exporter) BuildArchive(ctx context.Context) ([]byte, error) {
	doc, err := e.Export(ctx)
	if err != nil {
		return nil, err
	}
	files, err := e.CollectAssets(ctx)
	if err != nil {
		return nil, err
	}
	return e.codec.Write(doc, files)
}
