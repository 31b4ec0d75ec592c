package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN, or "memory://"
//	-s string   session JWT HMAC secret
//	-u string   local uploads directory
//	-k string   asset backend: "local" or "s3"
//	-i string   S3 access key id
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-f string   backup download file prefix
//	-m int      max restore archive size, MB
//	-t int      shutdown timeout, seconds
//	-l string   log level
//
// os.Args is first filtered with flagx.FilterArgs so the -c/-config flag
// owned by the JSON layer does not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-u", "-k", "-i", "-p", "-b", "-g", "-e", "-f", "-m", "-t", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session secret key")
	fs.StringVar(&config.UploadsDir, "u", config.UploadsDir, "uploads directory")
	fs.StringVar(&config.AssetBackend, "k", config.AssetBackend, "asset backend (local|s3)")
	fs.StringVar(&config.S3User, "i", config.S3User, "S3 access key id")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.BackupFilePrefix, "f", config.BackupFilePrefix, "backup file prefix")
	fs.Int64Var(&config.MaxRestoreSizeMB, "m", config.MaxRestoreSizeMB, "max restore archive size (in MB)")
	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
