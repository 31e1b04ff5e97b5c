package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bierclub/bier/internal/timex"
)

// JsonConfig mirrors Config for file decoding. Only keys present in the
// file override the current values.
type JsonConfig struct {
	HTTPAddr          *string         `json:"http_addr"`
	GRPCAddr          *string         `json:"grpc_addr"`
	DatabaseDSN       *string         `json:"database_dsn"`
	JWTSecret         *string         `json:"jwt_secret"`
	EncryptionKey     *string         `json:"encryption_key"`
	SessionTTL        *timex.Duration `json:"session_ttl"`
	VerifyTokenTTL    *timex.Duration `json:"verify_token_ttl"`
	ResetTokenTTL     *timex.Duration `json:"reset_token_ttl"`
	SweepInterval     *timex.Duration `json:"sweep_interval"`
	Argon2MemoryKiB   *uint32         `json:"argon2_memory_kib"`
	Argon2Iterations  *uint32         `json:"argon2_iterations"`
	Argon2Parallelism *uint8          `json:"argon2_parallelism"`
	MetadataBackend   *string         `json:"metadata_backend"`
	MetadataDir       *string         `json:"metadata_dir"`
	S3RootUser        *string         `json:"s3_root_user"`
	S3RootPassword    *string         `json:"s3_root_password"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	ResendAPIKey      *string         `json:"resend_api_key"`
	MailFrom          *string         `json:"mail_from"`
	AppBaseURL        *string         `json:"app_base_url"`
	LogLevel          *string         `json:"log_level"`
	LogFile           *string         `json:"log_file"`
}

func parseJson(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.MetadataDir, c.MetadataDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.ResendAPIKey, c.ResendAPIKey)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.AppBaseURL, c.AppBaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)

	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.VerifyTokenTTL != nil {
		config.VerifyTokenTTL = c.VerifyTokenTTL.Duration
	}
	if c.ResetTokenTTL != nil {
		config.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.Argon2MemoryKiB != nil {
		config.Argon2MemoryKiB = *c.Argon2MemoryKiB
	}
	if c.Argon2Iterations != nil {
		config.Argon2Iterations = *c.Argon2Iterations
	}
	if c.Argon2Parallelism != nil {
		config.Argon2Parallelism = *c.Argon2Parallelism
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
