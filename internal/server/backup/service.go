package backup

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/google/uuid"
)

// Service serializes exports, restores and image maintenance within the
// process. Restores and cleanups take the write lock, exports the read lock.
type Service struct {
	mu       sync.RWMutex
	exporter *Exporter
	importer *Importer
	log      logging.Logger
	newID    func() string
}

func NewService(exporter *Exporter, importer *Importer, log logging.Logger) *Service {
	return &Service{
		exporter: exporter,
		importer: importer,
		log:      log.With("module", "backup"),
		newID:    uuid.NewString,
	}
}

// Download builds a complete backup archive.
func (s *Service) Download(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf, err := s.exporter.BuildArchive(ctx)
	if err != nil {
		s.log.Error(ctx, "export failed", "error", err)
		return nil, err
	}
	s.log.Info(ctx, "export finished", "bytes", len(buf))
	return buf, nil
}

// Restore replaces the catalogue with the archive in buf. obs may be nil.
func (s *Service) Restore(ctx context.Context, buf []byte, obs Observer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With("restore_id", s.newID())
	log.Info(ctx, "restore requested", "bytes", len(buf))

	err := s.importer.RestoreFromArchive(ctx, buf, &loggingObserver{ctx: ctx, log: log, next: orNop(obs)})
	if err != nil {
		log.Error(ctx, "restore failed", "error", err)
		return err
	}
	log.Info(ctx, "restore finished")
	return nil
}

// CleanOrphanedImages removes images no recipe refers to.
func (s *Service) CleanOrphanedImages(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	err := s.exporter.runner.RunInTx(ctx, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		paths, err = s.exporter.repos.Recipes(tx).ListImagePaths(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list image paths: %w", err)
	}

	n, err := assets.CleanOrphans(ctx, s.exporter.store, paths)
	if err != nil {
		s.log.Error(ctx, "image cleanup failed", "deleted", n, "error", err)
		return n, err
	}
	s.log.Info(ctx, "image cleanup finished", "deleted", n)
	return n, nil
}

type loggingObserver struct {
	ctx  context.Context
	log  logging.Logger
	next Observer
}

func (o *loggingObserver) OnEvent(e Event) {
	args := []any{"phase", e.Phase.String()}
	if e.Entity != "" {
		args = append(args, "entity", e.Entity)
	}
	if e.Count != 0 {
		args = append(args, "count", e.Count)
	}
	o.log.Info(o.ctx, e.Message, args...)
	o.next.OnEvent(e)
}
