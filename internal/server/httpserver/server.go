// Package httpserver exposes the backup, restore and image endpoints of the
// recipebox server over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/backup"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
)

// Backups is the part of backup.Service the handlers depend on.
type Backups interface {
	Download(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, buf []byte, obs backup.Observer) error
	CleanOrphanedImages(ctx context.Context) (int, error)
}

// Uploads above this size are spooled to temporary files while parsing.
const defaultMultipartMemory = 32 << 20

type Server struct {
	address         string
	filePrefix      string
	maxRestoreBytes int64
	multipartMemory int64
	shutdownTimeout time.Duration
	logger          logging.Logger
	auth            Authenticator
	backups         Backups
	assets          assets.Store
	now             func() time.Time
}

func NewServer(cfg *config.Config, l logging.Logger, auth Authenticator, b Backups, store assets.Store) *Server {
	return &Server{
		address:         cfg.EndpointAddrHTTP,
		filePrefix:      cfg.BackupFilePrefix,
		maxRestoreBytes: cfg.MaxRestoreBytes(),
		multipartMemory: defaultMultipartMemory,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          l.With("module", "http_server"),
		auth:            auth,
		backups:         b,
		assets:          store,
		now:             time.Now,
	}
}

// Run serves until ctx is cancelled, then waits up to the shutdown timeout
// for in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
