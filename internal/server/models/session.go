package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record a bearer token points at. Deleting it
// revokes every token carrying its id.
type Session struct {
	ID        uuid.UUID
	UserID    int64
	UserAgent *string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the session is still usable at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}
