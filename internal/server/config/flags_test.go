package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8081", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-k", testKey, "-t", "7d", "-m", "s3", "-f", "/srv/meta", "-b", "bucket",
				"-e", "http://endpoint", "-u", "https://bier.club", "-l", "debug",
			},
			expected: &Config{
				HTTPAddr:        "127.0.0.1:8081",
				GRPCAddr:        "127.0.0.1:9090",
				DatabaseDSN:     "db",
				JWTSecret:       "secret",
				EncryptionKey:   testKey,
				SessionTTL:      7 * 24 * time.Hour,
				MetadataBackend: "s3",
				MetadataDir:     "/srv/meta",
				S3Bucket:        "bucket",
				S3BaseEndpoint:  "http://endpoint",
				AppBaseURL:      "https://bier.club",
				LogLevel:        "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"},
		},
		{
			name:    "bad session ttl",
			args:    []string{"-t", "later"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
