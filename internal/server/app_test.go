package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/config"
	"github.com/bierclub/bier/internal/server/mail"
	"github.com/bierclub/bier/internal/server/metadata"
)

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	_, err := NewApp(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestNewMetadataStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MetadataDir = t.TempDir()

	store, err := newMetadataStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &metadata.FSStore{}, store)

	cfg.MetadataBackend = config.MetadataBackendS3
	cfg.S3RootUser, cfg.S3RootPassword = "minio", "minio123"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"

	store, err = newMetadataStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &metadata.S3Store{}, store)
}

func TestNewMailSender(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	assert.IsType(t, &mail.LogSender{}, newMailSender(cfg, logging.Nop{}))

	cfg.ResendAPIKey = "re_test"
	assert.IsType(t, &mail.ResendSender{}, newMailSender(cfg, logging.Nop{}))
}
