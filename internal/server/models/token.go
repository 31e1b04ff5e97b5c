package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind tags an expiring token with the single action it authorizes.
// Values match the token_kind database enum.
type TokenKind string

const (
	TokenKindVerify TokenKind = "verify"
	TokenKindReset  TokenKind = "reset"
)

func (k TokenKind) Valid() bool {
	return k == TokenKindVerify || k == TokenKindReset
}

// ExpiringToken is a single-use, time-limited token. Only ID ever leaves
// the server.
type ExpiringToken struct {
	ID        uuid.UUID
	UserID    int64
	Kind      TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
}
