package httpserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/backup"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/stretchr/testify/require"
)

const testToken = "good-token"

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token != testToken {
		return nil, common.ErrorUnauthorized
	}
	return &models.User{ID: "u1", UserName: "mikines"}, nil
}

type fakeBackups struct {
	archive     []byte
	downloadErr error
	events      []backup.Event
	restoreErr  error
	restored    [][]byte
	cleaned     int
	cleanErr    error
}

func (f *fakeBackups) Download(context.Context) ([]byte, error) {
	return f.archive, f.downloadErr
}

func (f *fakeBackups) Restore(_ context.Context, buf []byte, obs backup.Observer) error {
	f.restored = append(f.restored, buf)
	if obs != nil {
		for _, e := range f.events {
			obs.OnEvent(e)
		}
	}
	return f.restoreErr
}

func (f *fakeBackups) CleanOrphanedImages(context.Context) (int, error) {
	return f.cleaned, f.cleanErr
}

type presigningStore struct {
	assets.Store
	url string
	err error
}

func (p presigningStore) PresignGet(context.Context, string) (string, error) {
	return p.url, p.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.MaxRestoreSizeMB = 1
	return cfg
}

func newTestServer(t *testing.T, b Backups, store assets.Store) *Server {
	t.Helper()
	s := NewServer(testConfig(), logging.Nop(), fakeAuth{}, b, store)
	s.now = func() time.Time { return fixedNow }
	return s
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func multipartRequest(t *testing.T, target, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "backup.zip")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
