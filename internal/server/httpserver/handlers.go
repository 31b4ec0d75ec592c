package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/filex"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/backup"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	backupFormField     = "backup"
	uploadsCacheControl = "public, max-age=31536000, immutable"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil || !filex.IsPlainName(name) {
		respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	if p, ok := s.assets.(assets.Presigner); ok {
		u, err := p.PresignGet(r.Context(), name)
		if err != nil {
			s.logger.Error(r.Context(), "presign failed", "file", name, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to serve image")
			return
		}
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	data, err := s.assets.Read(r.Context(), name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		s.logger.Error(r.Context(), "image read failed", "file", name, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to serve image")
		return
	}

	w.Header().Set("Content-Type", assets.ContentType(name))
	w.Header().Set("Cache-Control", uploadsCacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.logger.Info(r.Context(), "backup download requested", "user", requestUser(r))
	buf, err := s.backups.Download(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate backup")
		return
	}

	filename := fmt.Sprintf("%s_%s.zip", s.filePrefix, s.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	buf, status, msg := s.readBackupUpload(w, r)
	if status != http.StatusOK {
		respondError(w, status, msg)
		return
	}
	s.logger.Info(r.Context(), "backup restore requested", "user", requestUser(r), "bytes", len(buf))

	if err := s.backups.Restore(r.Context(), buf, nil); err != nil {
		status, msg := restoreFailure(err)
		respondError(w, status, msg)
		return
	}
	respondJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleRestoreStream reports each restore event as one NDJSON line. Upload
// problems are still answered with a plain JSON error and a 4xx status; once
// the restore starts the status is 200 and the outcome is the last line.
func (s *Server) handleRestoreStream(w http.ResponseWriter, r *http.Request) {
	buf, status, msg := s.readBackupUpload(w, r)
	if status != http.StatusOK {
		respondError(w, status, msg)
		return
	}
	s.logger.Info(r.Context(), "streamed backup restore requested", "user", requestUser(r), "bytes", len(buf))

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	writeLine := func(v any) {
		if err := enc.Encode(v); err != nil {
			s.logger.Debug(r.Context(), "stream write failed", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	obs := backup.ObserverFunc(func(e backup.Event) {
		writeLine(messageLine{Message: e.Message})
	})
	if err := s.backups.Restore(r.Context(), buf, obs); err != nil {
		_, msg := restoreFailure(err)
		writeLine(errorResponse{Error: msg})
		return
	}
	writeLine(successResponse{Success: true})
}

func (s *Server) handleCleanImages(w http.ResponseWriter, r *http.Request) {
	s.logger.Info(r.Context(), "image cleanup requested", "user", requestUser(r))
	n, err := s.backups.CleanOrphanedImages(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clean images")
		return
	}
	respondJSON(w, http.StatusOK, cleanupResponse{
		Count:   n,
		Message: fmt.Sprintf("Deleted %d orphaned images", n),
	})
}

// readBackupUpload returns the bytes of the "backup" multipart field, or the
// status and message to answer with.
func (s *Server) readBackupUpload(w http.ResponseWriter, r *http.Request) ([]byte, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRestoreBytes)

	err := r.ParseMultipartForm(s.multipartMemory)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	var file multipart.File
	if err == nil {
		file, _, err = r.FormFile(backupFormField)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, "Backup file too large"
		}
		return nil, http.StatusBadRequest, "No backup file provided"
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, "Failed to read backup file"
	}
	return buf, http.StatusOK, ""
}

// restoreFailure maps restore errors to a status and a client message.
// Malformed uploads are the caller's fault and their reason is shown.
func restoreFailure(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrMissingArchiveEntry),
		errors.Is(err, common.ErrInvalidArchive),
		errors.Is(err, common.ErrInvalidFormat):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to restore backup"
	}
}
