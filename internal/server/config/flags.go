package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/bierclub/bier/internal/flagx"
	"github.com/bierclub/bier/internal/timex"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   HTTP bind address
//	-g string   gRPC bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-k string   hex AES-256 key
//	-t string   session lifetime ("365d", "720h")
//	-m string   metadata backend: fs or s3
//	-f string   metadata root directory (fs backend)
//	-b string   S3 bucket
//	-e string   S3 base endpoint
//	-u string   public app base URL used in emails
//	-l string   log level
//
// Unknown flags are filtered out by flagx.FilterArgs so -c/-config and
// anything else on the command line pass through untouched.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-k", "-t", "-m", "-f", "-b", "-e", "-u", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT signing secret")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "hex encryption key")
	sessionTTL := fs.String("t", "", "session lifetime")
	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend (fs|s3)")
	fs.StringVar(&config.MetadataDir, "f", config.MetadataDir, "metadata directory")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.AppBaseURL, "u", config.AppBaseURL, "app base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *sessionTTL != "" {
		d, err := timex.ParseDuration(*sessionTTL)
		if err != nil {
			return fmt.Errorf("flag -t: %w", err)
		}
		config.SessionTTL = d
	}

	return nil
}
