// Package grpc serves the identity and chat flows over gRPC. Messages are
// JSON encoded; clients select the codec with
// grpc.CallContentSubtype(CodecName).
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/models"
	"github.com/bierclub/bier/internal/server/services"
)

type Users interface {
	Register(ctx context.Context, rc services.RequestContext, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, rc services.RequestContext, in services.LoginInput) (*services.AuthResult, error)
	Logout(ctx context.Context, id services.Identity) error
	Me(ctx context.Context, id services.Identity) (*models.User, error)
	Authenticate(ctx context.Context, bearer string) (services.Identity, error)
}

type Accounts interface {
	VerifyEmail(ctx context.Context, tokenID string) error
	ResendVerification(ctx context.Context, id services.Identity) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, tokenID, newPassword string) error
}

type Chat interface {
	Send(ctx context.Context, id services.Identity, clubID int64, content string) (*models.Message, error)
	List(ctx context.Context, id services.Identity, clubID int64, limit int) ([]models.Message, error)
}

type GRPCServer struct {
	address  string
	users    Users
	accounts Accounts
	chat     Chat
	logger   logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, users Users, accounts Accounts, chat Chat) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		users:    users,
		accounts: accounts,
		chat:     chat,
	}
}

// newServer creates the grpc.Server with the service, the auth interceptor
// and the standard health service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.bearerInterceptor))
	srv.RegisterService(&AuthServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is canceled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
