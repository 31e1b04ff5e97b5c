// Package services contains the identity and chat flows. Each flow runs its
// multi-statement work inside one dbx.WithTx and talks to storage only
// through the repositories it is given.
package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/cryptox"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/config"
	"github.com/bierclub/bier/internal/server/metadata"
	"github.com/bierclub/bier/internal/server/metrics"
	"github.com/bierclub/bier/internal/server/repositories/repomanager"
)

// AccountMailer sends the account emails. Delivery failures are logged by
// the services and never fail the calling flow.
type AccountMailer interface {
	SendVerification(ctx context.Context, to, tokenID string) error
	SendReset(ctx context.Context, to, tokenID string) error
}

// Deps are the collaborators shared by all services.
type Deps struct {
	DB       *sql.DB
	Repos    repomanager.RepositoryManager
	Metadata metadata.Store
	Mailer   AccountMailer
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Nop{}
	}
	return d.Logger
}

// Secrets is the key material and cost settings loaded once at startup.
type Secrets struct {
	JWTSecret      []byte
	Key            cryptox.Key
	Argon2         cryptox.Argon2Params
	SessionTTL     time.Duration
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
}

// SecretsFromConfig extracts Secrets from a validated config.
func SecretsFromConfig(cfg *config.Config) (Secrets, error) {
	key, err := cfg.Key()
	if err != nil {
		return Secrets{}, err
	}
	return Secrets{
		JWTSecret:      []byte(cfg.JWTSecret),
		Key:            key,
		Argon2:         cfg.Argon2Params(),
		SessionTTL:     cfg.SessionTTL,
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		ResetTokenTTL:  cfg.ResetTokenTTL,
	}, nil
}

// Identity is the authenticated caller, resolved from a bearer token.
type Identity struct {
	UserID    int64
	SessionID uuid.UUID
}

// RequestContext is assembled once at the transport boundary.
type RequestContext struct {
	Identity  Identity
	UserAgent string
}

type identityKey struct{}

// WithIdentity stores id in ctx for handlers behind the auth middleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
