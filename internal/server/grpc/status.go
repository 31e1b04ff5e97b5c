package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bierclub/bier/internal/common"
)

const (
	msgUnauthorized       = "unauthorized"
	msgBadCredentials     = "invalid email or password"
	msgEmailTaken         = "an account with this email already exists"
	msgTokenInvalid       = "invalid or expired token"
	msgSomethingWentWrong = "something went wrong, try again"
)

// toStatus maps a service error to a gRPC status. Internal detail is
// logged and replaced by a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error, unauthorizedMsg string) error {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Message)
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, unauthorizedMsg)
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, msgEmailTaken)
	case errors.Is(err, common.ErrTokenInvalidOrExpired):
		return status.Error(codes.InvalidArgument, msgTokenInvalid)
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, msgSomethingWentWrong)
	}
}
