package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/filex"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	"github.com/goccy/go-json"
)

// Views refreshed after every committed restore.
var InvalidatedPaths = []string{"/", "/admin", "/recipes"}

// Invalidator drops cached renderings of the given paths.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(ctx context.Context, paths ...string)

func (f InvalidatorFunc) Invalidate(ctx context.Context, paths ...string) { f(ctx, paths...) }

// Importer replaces the catalogue with the content of a backup.
type Importer struct {
	runner      dbx.TxRunner
	repos       repomanager.RepositoryManager
	store       assets.Store
	invalidator Invalidator
	codec       Codec
	now         func() time.Time
}

func NewImporter(runner dbx.TxRunner, repos repomanager.RepositoryManager, store assets.Store, inv Invalidator) *Importer {
	if inv == nil {
		inv = InvalidatorFunc(func(context.Context, ...string) {})
	}
	return &Importer{runner: runner, repos: repos, store: store, invalidator: inv, now: time.Now}
}

// Restore validates doc and replaces every table with its content inside
// one serializable transaction. obs may be nil.
func (i *Importer) Restore(ctx context.Context, doc *Document, obs Observer) error {
	obs = orNop(obs)
	obs.OnEvent(Event{Phase: PhaseStarted, Message: "Starting restore"})
	if err := i.restore(ctx, doc, obs); err != nil {
		return err
	}
	obs.OnEvent(Event{Phase: PhaseDone, Message: "Restore finished successfully"})
	return nil
}

// RestoreFromArchive reads a zip produced by the exporter, restores its
// document and then writes its images into the asset store. Images that
// are not in the archive are left alone.
func (i *Importer) RestoreFromArchive(ctx context.Context, buf []byte, obs Observer) error {
	obs = orNop(obs)
	obs.OnEvent(Event{Phase: PhaseStarted, Message: "Starting restore"})

	obs.OnEvent(Event{Phase: PhaseStarted, Message: "Reading " + common.BackupDocumentName})
	contents, err := i.codec.Read(buf)
	if err != nil {
		obs.OnEvent(Event{Phase: PhaseValidationFailed, Message: "ERROR: " + err.Error()})
		return err
	}

	doc, err := Decode(contents.Document)
	if err != nil {
		obs.OnEvent(Event{Phase: PhaseValidationFailed, Message: "ERROR: " + err.Error()})
		return err
	}

	if err := i.restore(ctx, doc, obs); err != nil {
		return err
	}

	if err := i.extract(ctx, contents.Assets, obs); err != nil {
		return err
	}
	obs.OnEvent(Event{Phase: PhaseDone, Message: "Restore finished successfully"})
	return nil
}

// Decode parses backup.json. Syntax errors are reported as
// common.ErrInvalidFormat.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}
	return &doc, nil
}

func (i *Importer) restore(ctx context.Context, doc *Document, obs Observer) error {
	if err := Validate(doc); err != nil {
		obs.OnEvent(Event{Phase: PhaseValidationFailed, Message: "ERROR: " + err.Error()})
		return err
	}

	obs.OnEvent(Event{Phase: PhaseStarted, Message: fmt.Sprintf("Backup version: %d", doc.Version)})
	obs.OnEvent(Event{Phase: PhaseStarted, Message: "Backup date: " + doc.GeneratedAt.UTC().Format(time.RFC3339)})

	now := i.now().UTC()
	err := i.runner.RunInTx(ctx, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := i.repos.Users(tx)
		categoryRepo := i.repos.Categories(tx)
		recipeRepo := i.repos.Recipes(tx)
		ingredientRepo := i.repos.Ingredients(tx)

		deletes := []struct {
			entity string
			run    func(context.Context) (int64, error)
		}{
			{EntityIngredients, ingredientRepo.DeleteAll},
			{EntityRecipes, recipeRepo.DeleteAll},
			{EntityCategories, categoryRepo.DeleteAll},
			{EntityUsers, userRepo.DeleteAll},
		}
		for _, d := range deletes {
			obs.OnEvent(Event{Phase: PhaseDeleting, Entity: d.entity, Message: "Deleting " + d.entity + "..."})
			if _, err := d.run(ctx); err != nil {
				return fmt.Errorf("delete %s: %w", d.entity, err)
			}
		}

		if doc.Users != nil {
			obs.OnEvent(recreating(EntityUsers, len(doc.Users)))
			for _, u := range doc.Users {
				if err := userRepo.Create(ctx, u.model()); err != nil {
					return fmt.Errorf("create user %s: %w", u.ID, err)
				}
			}
		}

		obs.OnEvent(recreating(EntityCategories, len(doc.Categories)))
		for _, c := range doc.Categories {
			if err := categoryRepo.Create(ctx, c.model()); err != nil {
				return fmt.Errorf("create category %s: %w", c.ID, err)
			}
		}

		obs.OnEvent(recreating(EntityRecipes, len(doc.Recipes)))
		for _, r := range doc.Recipes {
			if err := recipeRepo.Create(ctx, r.model(now)); err != nil {
				return fmt.Errorf("create recipe %s: %w", r.ID, err)
			}
			if err := ingredientRepo.CreateMany(ctx, r.ID, r.ingredientModels()); err != nil {
				return fmt.Errorf("create ingredients of recipe %s: %w", r.ID, err)
			}
			if err := recipeRepo.ConnectCategories(ctx, r.ID, r.categoryIDs()); err != nil {
				return fmt.Errorf("connect categories of recipe %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	obs.OnEvent(Event{Phase: PhaseCommitted, Message: "Database restored"})
	i.invalidator.Invalidate(ctx, InvalidatedPaths...)
	return nil
}

func recreating(entity string, n int) Event {
	return Event{Phase: PhaseRecreating, Entity: entity, Count: n, Message: fmt.Sprintf("Restoring %d %s...", n, entity)}
}

func (i *Importer) extract(ctx context.Context, files []Asset, obs Observer) error {
	obs.OnEvent(Event{Phase: PhaseExtractingAssets, Entity: EntityImages, Message: "Preparing image restore..."})
	if err := i.store.Ensure(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrAssetWrite, err)
	}

	obs.OnEvent(Event{
		Phase: PhaseExtractingAssets, Entity: EntityImages, Count: len(files),
		Message: fmt.Sprintf("Found %d images to restore", len(files)),
	})

	written := 0
	for _, f := range files {
		name := f.FileName()
		if !filex.IsPlainName(name) {
			continue
		}
		if err := i.store.Write(ctx, name, f.Data); err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrAssetWrite, name, err)
		}
		written++
		if written%ImageProgressStep == 0 {
			obs.OnEvent(Event{
				Phase: PhaseExtractingAssets, Entity: EntityImages, Count: written,
				Message: fmt.Sprintf("Restored %d images...", written),
			})
		}
	}

	obs.OnEvent(Event{
		Phase: PhaseExtractingAssets, Entity: EntityImages, Count: written,
		Message: fmt.Sprintf("Image restore complete. Total: %d", written),
	})
	return nil
}

func assetEntryName(name string) string {
	return common.UploadsPrefix + name
}
