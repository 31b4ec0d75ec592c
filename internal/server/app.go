// Package server initializes and runs the recipebox server. It opens the
// database and image storage, wires the backup pipeline, handles graceful
// shutdown and starts the HTTP server.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/backup"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/httpserver"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
)

// logOutput is where the application logger writes.
var logOutput io.Writer = os.Stdout

type App struct {
	config      *config.Config
	logger      logging.Logger
	storage     *Storage
	assets      assets.Store
	userService *services.UserService
	backups     *backup.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	st, err := OpenStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	store, err := openAssets(ctx, c)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	// no page cache lives in this process, invalidations are only logged
	inv := backup.InvalidatorFunc(func(ctx context.Context, paths ...string) {
		logger.Info(ctx, "cached pages invalidated", "paths", paths)
	})

	bs := backup.NewService(
		backup.NewExporter(st.Runner, st.Repos, store),
		backup.NewImporter(st.Runner, st.Repos, store, inv),
		logger,
	)
	us := services.NewUserService(st.Runner, st.Repos, c)

	return &App{config: c, logger: logger, storage: st, assets: store, userService: us, backups: bs}, nil
}

func openAssets(ctx context.Context, c *config.Config) (assets.Store, error) {
	var store assets.Store
	switch c.AssetBackend {
	case config.AssetBackendLocal:
		store = assets.NewLocalStore(c.UploadsDir)
	case config.AssetBackendS3:
		s3, err := assets.NewS3Store(ctx, assets.S3Options{
			User:         c.S3User,
			Password:     c.S3Password,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Prefix:       common.UploadsPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("asset store init error: %w", err)
		}
		store = s3
	default:
		return nil, fmt.Errorf("unknown asset backend %q", c.AssetBackend)
	}

	if err := store.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("asset store init error: %w", err)
	}
	return store, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpserver.NewServer(app.config, app.logger, app.userService, app.backups, app.assets)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
