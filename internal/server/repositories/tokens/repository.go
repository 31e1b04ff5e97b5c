// Package tokens stores single-use expiring tokens for email verification
// and password reset.
package tokens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ExpiringToken) error

	// Take deletes the token matching id and kind that is still valid at now
	// and returns its owner. The row is locked by the delete, so of two
	// concurrent callers only one gets it; the other sees common.ErrNotFound.
	Take(ctx context.Context, id uuid.UUID, kind models.TokenKind, now time.Time) (int64, error)

	// DeleteByUserKind drops every token of kind owned by userID.
	DeleteByUserKind(ctx context.Context, userID int64, kind models.TokenKind) (int64, error)

	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
