package httpserver

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_CopiesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.BackupFilePrefix = "mybackup"

	s := NewServer(cfg, logging.Nop(), fakeAuth{}, &fakeBackups{}, assets.NewLocalStore(t.TempDir()))

	assert.Equal(t, "127.0.0.1:0", s.address)
	assert.Equal(t, "mybackup", s.filePrefix)
	assert.Equal(t, int64(1<<20), s.maxRestoreBytes)
	assert.Equal(t, cfg.ShutdownTimeout, s.shutdownTimeout)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	s := NewServer(cfg, logging.Nop(), fakeAuth{}, &fakeBackups{}, assets.NewLocalStore(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointAddrHTTP = "not-an-address"
	s := NewServer(cfg, logging.Nop(), fakeAuth{}, &fakeBackups{}, assets.NewLocalStore(t.TempDir()))

	assert.Error(t, s.Run(context.Background()))
}
