package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/server/auth"
	"github.com/bierclub/bier/internal/server/services"
)

// bearerInterceptor authenticates protected methods from the
// "authorization: Bearer <token>" metadata and stores the identity in ctx.
func (s *GRPCServer) bearerInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token, ok := auth.BearerToken(firstMetadata(ctx, common.AuthorizationHeaderName))
	if !ok {
		return nil, status.Error(codes.Unauthenticated, msgUnauthorized)
	}

	id, err := s.users.Authenticate(ctx, token)
	if err != nil {
		return nil, s.toStatus(ctx, info.FullMethod, err, msgUnauthorized)
	}

	return handler(services.WithIdentity(ctx, id), req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func requestContext(ctx context.Context) services.RequestContext {
	id, _ := services.IdentityFrom(ctx)
	return services.RequestContext{Identity: id, UserAgent: firstMetadata(ctx, "user-agent")}
}

// identity returns the caller set by bearerInterceptor.
func identity(ctx context.Context) (services.Identity, error) {
	id, ok := services.IdentityFrom(ctx)
	if !ok {
		return services.Identity{}, status.Error(codes.Unauthenticated, msgUnauthorized)
	}
	return id, nil
}
