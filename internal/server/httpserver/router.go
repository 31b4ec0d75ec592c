package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Backup routes are heavy, so they share a small per-IP budget.
const (
	backupRateLimit  = 10
	backupRateWindow = time.Minute
)

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/uploads/{filename}", s.handleUpload)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Route("/backup", func(r chi.Router) {
				r.Use(httprate.LimitByIP(backupRateLimit, backupRateWindow))
				r.Get("/download", s.handleDownload)
				r.Post("/restore", s.handleRestore)
				r.Post("/restore/stream", s.handleRestoreStream)
			})

			r.Post("/admin/maintenance/clean-images", s.handleCleanImages)
		})
	})

	return r
}
