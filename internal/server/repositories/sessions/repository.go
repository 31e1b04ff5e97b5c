// Package sessions stores the server-side session rows bearer tokens are
// bound to.
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/server/models"
)

// Repository defines operations for creating, checking and revoking sessions.
type Repository interface {
	// Create stores s. s.ID is chosen by the caller so a token can be
	// minted for it before the transaction commits.
	Create(ctx context.Context, s *models.Session) error

	// FindActive returns the session with id if it has not expired at now.
	// Missing and expired sessions both yield common.ErrNotFound.
	FindActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUser revokes every session of userID.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)

	// PurgeExpired removes sessions that expired at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
