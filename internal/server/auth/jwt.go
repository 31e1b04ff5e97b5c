// Package auth mints and verifies the bearer tokens handed to clients.
//
// A token names a user (sub) and the server-side session it belongs to
// (sid). Verifying a token here says nothing about whether that session
// still exists; callers must check storage as well.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/common"
)

// DefaultTTL is the "remember me" lifetime of a bearer token.
const DefaultTTL = 365 * 24 * time.Hour

// Claims are the registered claims plus the session id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`

	userID    int64
	sessionID uuid.UUID
}

// UserID is the decoded sub claim. Valid only on claims returned by VerifyToken.
func (c *Claims) UserID() int64 { return c.userID }

// Session is the decoded sid claim. Valid only on claims returned by VerifyToken.
func (c *Claims) Session() uuid.UUID { return c.sessionID }

// IssueToken signs an HS256 token for userID bound to sessionID.
func IssueToken(userID int64, sessionID uuid.UUID, key []byte, now time.Time, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", errors.New("empty signing key")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionID: sessionID.String(),
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyToken checks the signature, algorithm and expiry of tokenString
// as of now and decodes its subject and session id.
func VerifyToken(tokenString string, key []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	// exp must lie strictly after now; the library accepts exp == now.
	if !claims.ExpiresAt.After(now) {
		return nil, common.ErrTokenExpired
	}

	claims.userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.userID <= 0 {
		return nil, common.ErrInvalidToken
	}

	claims.sessionID, err = uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
