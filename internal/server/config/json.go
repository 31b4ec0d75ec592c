package config

import (
	"os"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
	"github.com/dmitrijs2005/recipebox/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10s" and integer nanoseconds are accepted.
//
// Only keys present in the file override the current values; pointers tell
// "absent" apart from "zero".
type JsonConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SecretKey        *string         `json:"secret_key"`
	UploadsDir       *string         `json:"uploads_dir"`
	AssetBackend     *string         `json:"asset_backend"`
	S3User           *string         `json:"s3_user"`
	S3Password       *string         `json:"s3_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	BackupFilePrefix *string         `json:"backup_file_prefix"`
	MaxRestoreSizeMB *int64          `json:"max_restore_size_mb"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics, as a half-applied configuration is worse than none.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.UploadsDir, c.UploadsDir)
	setString(&config.AssetBackend, c.AssetBackend)
	setString(&config.S3User, c.S3User)
	setString(&config.S3Password, c.S3Password)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.BackupFilePrefix, c.BackupFilePrefix)
	setString(&config.LogLevel, c.LogLevel)
	if c.MaxRestoreSizeMB != nil {
		config.MaxRestoreSizeMB = *c.MaxRestoreSizeMB
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
