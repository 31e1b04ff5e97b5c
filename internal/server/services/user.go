package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/cryptox"
	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/auth"
	"github.com/bierclub/bier/internal/server/metrics"
	"github.com/bierclub/bier/internal/server/models"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login. EncryptedMetadata is the
// user's metadata blob in hex, still encrypted.
type AuthResult struct {
	User              *models.User
	Token             string
	EncryptedMetadata string
}

// UserService provides the session lifecycle: register, login, logout and
// bearer authentication.
type UserService struct {
	deps    Deps
	secrets Secrets
	tokens  *TokenService
	log     logging.Logger
	// dummyHash is verified against when the email is unknown so both login
	// failure paths cost one Argon2 derivation.
	dummyHash string
}

func NewUserService(deps Deps, secrets Secrets, tokens *TokenService) (*UserService, error) {
	dummy, err := cryptox.HashPassword([]byte("bier-dummy-password"), secrets.Argon2)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &UserService{
		deps:      deps,
		secrets:   secrets,
		tokens:    tokens,
		log:       deps.logger().With("module", "users"),
		dummyHash: dummy,
	}, nil
}

// Register creates the user, the metadata blob, a verification token and a
// first session, all before one commit; the bearer token is minted before
// the commit too. The verification email goes out only after commit.
func (s *UserService) Register(ctx context.Context, rc RequestContext, in RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(in.Username, in.Email, in.Password); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowRegister, metrics.OutcomeInvalid)
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	now := s.deps.now()

	var (
		result    AuthResult
		verifyID  uuid.UUID
		blobOwner int64
	)

	err := dbx.WithTx(ctx, s.deps.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.deps.Repos.Users(tx)

		exists, err := users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrConflict
		}

		hash, err := cryptox.HashPassword([]byte(in.Password), s.secrets.Argon2)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user, err := users.Create(ctx, &models.User{
			Email:        email,
			DisplayName:  strings.TrimSpace(in.Username),
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		blob, err := cryptox.SealJSON(models.Metadata{
			ID:    user.ID,
			Email: email,
			LatestSession: models.LatestSession{
				Email:     email,
				CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
			},
		}, s.secrets.Key)
		if err != nil {
			return fmt.Errorf("%w: seal metadata: %v", common.ErrCrypto, err)
		}

		if err := s.deps.Metadata.Create(ctx, user.ID, blob); err != nil {
			return fmt.Errorf("create metadata: %w", err)
		}
		blobOwner = user.ID

		verifyID, err = s.tokens.Issue(ctx, tx, user.ID, models.TokenKindVerify)
		if err != nil {
			return err
		}

		token, err := s.openSession(ctx, tx, user.ID, rc.UserAgent, now)
		if err != nil {
			return err
		}

		result = AuthResult{User: user, Token: token, EncryptedMetadata: blob}
		return nil
	})
	if err != nil {
		if blobOwner != 0 {
			s.dropOrphanBlob(ctx, blobOwner, err)
		}
		s.countFailure(metrics.FlowRegister, err)
		return nil, err
	}

	if err := s.deps.Mailer.SendVerification(ctx, email, verifyID.String()); err != nil {
		s.deps.Metrics.MailFailure()
		s.log.Warn(ctx, "verification email not sent", "user_id", result.User.ID, "error", err)
	}

	s.deps.Metrics.AuthEvent(metrics.FlowRegister, metrics.OutcomeSuccess)
	s.log.Info(ctx, "user registered", "user_id", result.User.ID)

	return &result, nil
}

// Login checks the password, opens a session and returns the metadata blob
// re-encrypted with this login recorded as the latest session. Unknown
// email and wrong password both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, rc RequestContext, in LoginInput) (*AuthResult, error) {
	if err := validateEmail(in.Email); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeInvalid)
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeInvalid)
		return nil, err
	}

	email := NormalizeEmail(in.Email)

	user, err := s.deps.Repos.Users(s.deps.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			cryptox.VerifyPassword([]byte(in.Password), s.dummyHash)
			s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeDenied)
			return nil, common.ErrUnauthorized
		}
		s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeError)
		return nil, fmt.Errorf("login: %w", err)
	}

	if !cryptox.VerifyPassword([]byte(in.Password), user.PasswordHash) {
		s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeDenied)
		return nil, common.ErrUnauthorized
	}

	meta, err := s.loadMetadata(ctx, user)
	if err != nil {
		s.countFailure(metrics.FlowLogin, err)
		return nil, err
	}

	now := s.deps.now()

	var token string
	err = dbx.WithTx(ctx, s.deps.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.openSession(ctx, tx, user.ID, rc.UserAgent, now)
		return err
	})
	if err != nil {
		s.countFailure(metrics.FlowLogin, err)
		return nil, err
	}

	meta.LatestSession = models.LatestSession{Email: email, CreatedAt: now.UTC().Format(time.RFC3339)}
	blob, err := cryptox.SealJSON(meta, s.secrets.Key)
	if err != nil {
		s.countFailure(metrics.FlowLogin, err)
		return nil, fmt.Errorf("%w: seal metadata: %v", common.ErrCrypto, err)
	}
	if err := s.deps.Metadata.Save(ctx, user.ID, blob); err != nil {
		s.log.Warn(ctx, "metadata not saved after login", "user_id", user.ID, "error", err)
	}

	s.deps.Metrics.AuthEvent(metrics.FlowLogin, metrics.OutcomeSuccess)

	return &AuthResult{User: user, Token: token, EncryptedMetadata: blob}, nil
}

// Logout deletes the caller's session. Logging out twice is fine.
func (s *UserService) Logout(ctx context.Context, id Identity) error {
	if err := s.deps.Repos.Sessions(s.deps.DB).Delete(ctx, id.SessionID); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowLogout, metrics.OutcomeError)
		return fmt.Errorf("logout: %w", err)
	}
	s.deps.Metrics.AuthEvent(metrics.FlowLogout, metrics.OutcomeSuccess)
	return nil
}

// Me returns the caller's user record.
func (s *UserService) Me(ctx context.Context, id Identity) (*models.User, error) {
	user, err := s.deps.Repos.Users(s.deps.DB).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to an Identity. The token must
// verify and its session must still exist, be unexpired and belong to the
// token's subject. Each of those failures is common.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, bearer string) (Identity, error) {
	now := s.deps.now()

	claims, err := auth.VerifyToken(bearer, s.secrets.JWTSecret, now)
	if err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowAuthenticate, metrics.OutcomeDenied)
		return Identity{}, fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}

	session, err := s.deps.Repos.Sessions(s.deps.DB).FindActive(ctx, claims.Session(), now)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.deps.Metrics.AuthEvent(metrics.FlowAuthenticate, metrics.OutcomeDenied)
			return Identity{}, fmt.Errorf("%w: session revoked or expired", common.ErrUnauthorized)
		}
		s.deps.Metrics.AuthEvent(metrics.FlowAuthenticate, metrics.OutcomeError)
		return Identity{}, fmt.Errorf("authenticate: %w", err)
	}

	if session.UserID != claims.UserID() {
		s.deps.Metrics.AuthEvent(metrics.FlowAuthenticate, metrics.OutcomeDenied)
		return Identity{}, fmt.Errorf("%w: session owner mismatch", common.ErrUnauthorized)
	}

	return Identity{UserID: session.UserID, SessionID: session.ID}, nil
}

// openSession stores a session row through tx and mints its bearer token.
// Callers commit only after this returns without error.
func (s *UserService) openSession(ctx context.Context, tx dbx.DBTX, userID int64, userAgent string, now time.Time) (string, error) {
	sid, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	session := &models.Session{
		ID:        sid,
		UserID:    userID,
		ExpiresAt: now.Add(s.secrets.SessionTTL),
	}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		session.UserAgent = &ua
	}

	if err := s.deps.Repos.Sessions(tx).Create(ctx, session); err != nil {
		return "", err
	}

	token, err := auth.IssueToken(userID, sid, s.secrets.JWTSecret, now, s.secrets.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return token, nil
}

// loadMetadata decrypts the user's blob. A blob that fails to decrypt is a
// hard error; a missing one is rebuilt from the user record.
func (s *UserService) loadMetadata(ctx context.Context, user *models.User) (models.Metadata, error) {
	var meta models.Metadata

	blob, err := s.deps.Metadata.Load(ctx, user.ID)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Warn(ctx, "metadata missing, rebuilding", "user_id", user.ID)
		return models.Metadata{ID: user.ID, Email: user.Email}, s.createMetadata(ctx, user)
	}
	if err != nil {
		return meta, fmt.Errorf("load metadata: %w", err)
	}

	if err := cryptox.OpenJSON(blob, s.secrets.Key, &meta); err != nil {
		s.log.Error(ctx, "metadata failed to decrypt", "user_id", user.ID, "error", err)
		return meta, fmt.Errorf("%w: metadata: %v", common.ErrCrypto, err)
	}

	return meta, nil
}

func (s *UserService) createMetadata(ctx context.Context, user *models.User) error {
	blob, err := cryptox.SealJSON(models.Metadata{ID: user.ID, Email: user.Email}, s.secrets.Key)
	if err != nil {
		return fmt.Errorf("%w: seal metadata: %v", common.ErrCrypto, err)
	}
	if err := s.deps.Metadata.Create(ctx, user.ID, blob); err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}
	return nil
}

// dropOrphanBlob removes a metadata blob whose user row was rolled back.
func (s *UserService) dropOrphanBlob(ctx context.Context, userID int64, cause error) {
	if err := s.deps.Metadata.Delete(ctx, userID); err != nil {
		s.log.Error(ctx, "orphan metadata not removed", "user_id", userID, "cause", cause, "error", err)
	}
}

func (s *UserService) countFailure(flow string, err error) {
	switch {
	case errors.Is(err, common.ErrConflict):
		s.deps.Metrics.AuthEvent(flow, metrics.OutcomeConflict)
	case errors.Is(err, common.ErrValidation):
		s.deps.Metrics.AuthEvent(flow, metrics.OutcomeInvalid)
	default:
		s.deps.Metrics.AuthEvent(flow, metrics.OutcomeError)
	}
}
