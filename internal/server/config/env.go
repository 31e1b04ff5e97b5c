package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bierclub/bier/internal/timex"
)

// parseEnv applies the environment on top of everything else. Secrets are
// normally supplied this way.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":        &config.HTTPAddr,
		"GRPC_ADDR":        &config.GRPCAddr,
		"DATABASE_URL":     &config.DatabaseDSN,
		"JWT_SECRET":       &config.JWTSecret,
		"ENCRYPTION_KEY":   &config.EncryptionKey,
		"METADATA_BACKEND": &config.MetadataBackend,
		"METADATA_DIR":     &config.MetadataDir,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"RESEND_API_KEY":   &config.ResendAPIKey,
		"MAIL_FROM":        &config.MailFrom,
		"APP_BASE_URL":     &config.AppBaseURL,
		"LOG_LEVEL":        &config.LogLevel,
		"LOG_FILE":         &config.LogFile,
	}

	for name, dst := range strs {
		if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	durations := map[string]*time.Duration{
		"SESSION_TTL":      &config.SessionTTL,
		"VERIFY_TOKEN_TTL": &config.VerifyTokenTTL,
		"RESET_TOKEN_TTL":  &config.ResetTokenTTL,
		"SWEEP_INTERVAL":   &config.SweepInterval,
	}

	for name, dst := range durations {
		v, ok := lookupEnv(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		*dst = d
	}

	return nil
}
