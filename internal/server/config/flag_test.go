package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8080", "-d", "memory://", "-s", "secret",
			"-u", "/srv/uploads", "-k", "s3", "-i", "user", "-p", "password",
			"-b", "bucket", "-g", "eu-west-1", "-e", "http://endpoint",
			"-f", "recetas", "-m", "64", "-t", "5", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:8080",
				DatabaseDSN:      "memory://",
				SecretKey:        "secret",
				UploadsDir:       "/srv/uploads",
				AssetBackend:     "s3",
				S3User:           "user",
				S3Password:       "password",
				S3Bucket:         "bucket",
				S3Region:         "eu-west-1",
				S3BaseEndpoint:   "http://endpoint",
				BackupFilePrefix: "recetas",
				MaxRestoreSizeMB: 64,
				ShutdownTimeout:  5 * time.Second,
				LogLevel:         "debug",
			}},
		{name: "bad integer panics", args: []string{"cmd", "-m", "lots"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}
			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsValuesForAbsentFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-c", "cfg.json", "-a", ":9000"}
	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "recipines_backup", c.BackupFilePrefix)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
}
