package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/cryptox"
	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/metrics"
	"github.com/bierclub/bier/internal/server/models"
)

// AccountService handles email verification and password reset.
type AccountService struct {
	deps    Deps
	secrets Secrets
	tokens  *TokenService
	log     logging.Logger
}

func NewAccountService(deps Deps, secrets Secrets, tokens *TokenService) *AccountService {
	return &AccountService{
		deps:    deps,
		secrets: secrets,
		tokens:  tokens,
		log:     deps.logger().With("module", "accounts"),
	}
}

// VerifyEmail consumes a verify token and marks its owner verified.
func (s *AccountService) VerifyEmail(ctx context.Context, tokenID string) error {
	userID, err := s.tokens.Consume(ctx, tokenID, models.TokenKindVerify,
		func(ctx context.Context, tx dbx.DBTX, userID int64) error {
			return s.deps.Repos.Users(tx).SetVerified(ctx, userID)
		})
	if err != nil {
		s.count(metrics.FlowVerifyEmail, err)
		return err
	}

	s.deps.Metrics.AuthEvent(metrics.FlowVerifyEmail, metrics.OutcomeSuccess)
	s.log.Info(ctx, "email verified", "user_id", userID)
	return nil
}

// ResendVerification replaces the caller's verify tokens with a fresh one
// and mails it. It does nothing for a user that is already verified.
func (s *AccountService) ResendVerification(ctx context.Context, id Identity) error {
	user, err := s.deps.Repos.Users(s.deps.DB).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		s.deps.Metrics.AuthEvent(metrics.FlowResendVerify, metrics.OutcomeError)
		return fmt.Errorf("resend verification: %w", err)
	}
	if user.IsVerified {
		return nil
	}

	var tokenID string
	err = dbx.WithTx(ctx, s.deps.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.deps.Repos.Tokens(tx).DeleteByUserKind(ctx, user.ID, models.TokenKindVerify); err != nil {
			return err
		}
		fresh, err := s.tokens.Issue(ctx, tx, user.ID, models.TokenKindVerify)
		if err != nil {
			return err
		}
		tokenID = fresh.String()
		return nil
	})
	if err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowResendVerify, metrics.OutcomeError)
		return err
	}

	if err := s.deps.Mailer.SendVerification(ctx, user.Email, tokenID); err != nil {
		s.deps.Metrics.MailFailure()
		s.log.Warn(ctx, "verification email not sent", "user_id", user.ID, "error", err)
	}

	s.deps.Metrics.AuthEvent(metrics.FlowResendVerify, metrics.OutcomeSuccess)
	return nil
}

// ForgotPassword mails a reset link when email belongs to a user. The
// result does not reveal whether it does.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowForgot, metrics.OutcomeInvalid)
		return err
	}
	email = NormalizeEmail(email)

	user, err := s.deps.Repos.Users(s.deps.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.deps.Metrics.AuthEvent(metrics.FlowForgot, metrics.OutcomeSuccess)
			return nil
		}
		s.deps.Metrics.AuthEvent(metrics.FlowForgot, metrics.OutcomeError)
		return fmt.Errorf("forgot password: %w", err)
	}

	tokenID, err := s.tokens.Issue(ctx, s.deps.DB, user.ID, models.TokenKindReset)
	if err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowForgot, metrics.OutcomeError)
		return err
	}

	if err := s.deps.Mailer.SendReset(ctx, user.Email, tokenID.String()); err != nil {
		s.deps.Metrics.MailFailure()
		s.log.Warn(ctx, "reset email not sent", "user_id", user.ID, "error", err)
	}

	s.deps.Metrics.AuthEvent(metrics.FlowForgot, metrics.OutcomeSuccess)
	return nil
}

// ResetPassword consumes a reset token, stores the new credential and
// revokes all of the owner's sessions and remaining reset tokens.
func (s *AccountService) ResetPassword(ctx context.Context, tokenID, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowResetPassword, metrics.OutcomeInvalid)
		return err
	}

	hash, err := cryptox.HashPassword([]byte(newPassword), s.secrets.Argon2)
	if err != nil {
		s.deps.Metrics.AuthEvent(metrics.FlowResetPassword, metrics.OutcomeError)
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.tokens.Consume(ctx, tokenID, models.TokenKindReset,
		func(ctx context.Context, tx dbx.DBTX, userID int64) error {
			if err := s.deps.Repos.Users(tx).UpdatePassword(ctx, userID, hash); err != nil {
				return err
			}
			_, err := s.deps.Repos.Sessions(tx).DeleteByUser(ctx, userID)
			return err
		})
	if err != nil {
		s.count(metrics.FlowResetPassword, err)
		return err
	}

	s.deps.Metrics.AuthEvent(metrics.FlowResetPassword, metrics.OutcomeSuccess)
	s.log.Info(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *AccountService) count(flow string, err error) {
	if errors.Is(err, common.ErrTokenInvalidOrExpired) {
		s.deps.Metrics.AuthEvent(flow, metrics.OutcomeDenied)
		return
	}
	s.deps.Metrics.AuthEvent(flow, metrics.OutcomeError)
}
