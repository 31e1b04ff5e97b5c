package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/server/models"
)

// TokenEffect is the action a consumed token authorizes. It runs in the
// same transaction as the token deletion.
type TokenEffect func(ctx context.Context, tx dbx.DBTX, userID int64) error

// TokenService issues and consumes single-use expiring tokens.
type TokenService struct {
	deps Deps
	ttl  map[models.TokenKind]time.Duration
}

func NewTokenService(deps Deps, secrets Secrets) *TokenService {
	return &TokenService{
		deps: deps,
		ttl: map[models.TokenKind]time.Duration{
			models.TokenKindVerify: secrets.VerifyTokenTTL,
			models.TokenKindReset:  secrets.ResetTokenTTL,
		},
	}
}

// Issue stores a fresh token of kind for userID through db, which may be a
// transaction owned by the caller.
func (s *TokenService) Issue(ctx context.Context, db dbx.DBTX, userID int64, kind models.TokenKind) (uuid.UUID, error) {
	ttl, ok := s.ttl[kind]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown token kind %q", kind)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate token id: %w", err)
	}

	tok := &models.ExpiringToken{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: s.deps.now().Add(ttl),
	}
	if err := s.deps.Repos.Tokens(db).Create(ctx, tok); err != nil {
		return uuid.Nil, fmt.Errorf("error issuing %s token: %w", kind, err)
	}

	return id, nil
}

// Consume takes the token and applies effect in one transaction. Consuming
// a reset token also drops every other reset token of the user. A token
// that is unknown, of another kind, expired or already used yields
// common.ErrTokenInvalidOrExpired.
func (s *TokenService) Consume(ctx context.Context, rawID string, kind models.TokenKind, effect TokenEffect) (int64, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return 0, common.ErrTokenInvalidOrExpired
	}

	var userID int64
	err = dbx.WithTx(ctx, s.deps.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.deps.Repos.Tokens(tx)

		uid, err := tokens.Take(ctx, id, kind, s.deps.now())
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrTokenInvalidOrExpired
			}
			return err
		}

		if err := effect(ctx, tx, uid); err != nil {
			return err
		}

		if kind == models.TokenKindReset {
			if _, err := tokens.DeleteByUserKind(ctx, uid, models.TokenKindReset); err != nil {
				return err
			}
		}

		userID = uid
		return nil
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}
