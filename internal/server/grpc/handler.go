package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bierclub/bier/internal/server/models"
	"github.com/bierclub/bier/internal/server/services"
)

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	res, err := s.users.Register(ctx, requestContext(ctx), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "Register", err, msgUnauthorized)
	}

	s.logger.Info(ctx, "Registered", "user_id", res.User.ID)
	return &AuthResponse{User: res.User, Token: res.Token, EncryptedMetadata: res.EncryptedMetadata}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	res, err := s.users.Login(ctx, requestContext(ctx), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "Login", err, msgBadCredentials)
	}

	return &AuthResponse{User: res.User, Token: res.Token, EncryptedMetadata: res.EncryptedMetadata}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *Empty) (*OKResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.Logout(ctx, id); err != nil {
		return nil, s.toStatus(ctx, "Logout", err, msgUnauthorized)
	}
	return &OKResponse{OK: true}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *Empty) (*models.User, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Me(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, "Me", err, msgUnauthorized)
	}
	return user, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *TokenRequest) (*OKResponse, error) {
	if err := s.accounts.VerifyEmail(ctx, req.Token); err != nil {
		return nil, s.toStatus(ctx, "VerifyEmail", err, msgUnauthorized)
	}
	return &OKResponse{OK: true}, nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, _ *Empty) (*OKResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.ResendVerification(ctx, id); err != nil {
		return nil, s.toStatus(ctx, "ResendVerification", err, msgUnauthorized)
	}
	return &OKResponse{OK: true}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (*OKResponse, error) {
	if err := s.accounts.ForgotPassword(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "ForgotPassword", err, msgUnauthorized)
	}
	return &OKResponse{OK: true}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*OKResponse, error) {
	if err := s.accounts.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, "ResetPassword", err, msgUnauthorized)
	}
	return &OKResponse{OK: true}, nil
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *SendMessageRequest) (*models.Message, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.ClubID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid club id")
	}
	msg, err := s.chat.Send(ctx, id, req.ClubID, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, "SendMessage", err, msgUnauthorized)
	}
	return msg, nil
}

func (s *GRPCServer) ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.ClubID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid club id")
	}
	msgs, err := s.chat.List(ctx, id, req.ClubID, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, "ListMessages", err, msgUnauthorized)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return &ListMessagesResponse{Messages: msgs}, nil
}
