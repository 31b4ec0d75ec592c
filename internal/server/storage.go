package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/memory"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
)

// Storage is an opened, migrated database together with the runner and
// repositories bound to it.
type Storage struct {
	Runner dbx.TxRunner
	Repos  repomanager.RepositoryManager
	db     *sql.DB
}

// OpenStorage connects to cfg.DatabaseDSN and applies migrations.
// config.MemoryDSN selects a process-local store.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.DatabaseDSN == config.MemoryDSN {
		s := memory.NewStore()
		return &Storage{Runner: s, Repos: s}, nil
	}

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &Storage{Runner: dbx.NewSQLRunner(db), Repos: m, db: db}, nil
}

// Close releases the database handle, if any.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
