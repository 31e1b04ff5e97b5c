package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/models"
	"github.com/bierclub/bier/internal/server/services"
)

const goodToken = "good-token"

var aliceID = services.Identity{UserID: 1, SessionID: uuid.MustParse("0b6f4c52-9d59-4b8e-8f3a-5bde2a3e9c11")}

type fakeUsers struct {
	registerErr error
	loginErr    error
	authErr     error
	gotRC       services.RequestContext
}

func (f *fakeUsers) Register(_ context.Context, rc services.RequestContext, in services.RegisterInput) (*services.AuthResult, error) {
	f.gotRC = rc
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.AuthResult{User: &models.User{ID: 1, Email: in.Email}, Token: goodToken, EncryptedMetadata: "beef"}, nil
}

func (f *fakeUsers) Login(_ context.Context, rc services.RequestContext, in services.LoginInput) (*services.AuthResult, error) {
	f.gotRC = rc
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AuthResult{User: &models.User{ID: 1, Email: in.Email}, Token: goodToken, EncryptedMetadata: "beef"}, nil
}

func (f *fakeUsers) Logout(context.Context, services.Identity) error { return nil }

func (f *fakeUsers) Me(_ context.Context, id services.Identity) (*models.User, error) {
	return &models.User{ID: id.UserID, Email: "alice@example.com"}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, bearer string) (services.Identity, error) {
	if f.authErr != nil {
		return services.Identity{}, f.authErr
	}
	if bearer != goodToken {
		return services.Identity{}, common.ErrUnauthorized
	}
	return aliceID, nil
}

type fakeAccounts struct{ err error }

func (f *fakeAccounts) VerifyEmail(context.Context, string) error                   { return f.err }
func (f *fakeAccounts) ResendVerification(context.Context, services.Identity) error { return f.err }
func (f *fakeAccounts) ForgotPassword(context.Context, string) error                { return f.err }
func (f *fakeAccounts) ResetPassword(context.Context, string, string) error         { return f.err }

type fakeChat struct{ gotLimit int }

func (f *fakeChat) Send(_ context.Context, id services.Identity, clubID int64, content string) (*models.Message, error) {
	uid := id.UserID
	return &models.Message{ID: 1, ClubID: clubID, UserID: &uid, Content: content}, nil
}

func (f *fakeChat) List(_ context.Context, _ services.Identity, _ int64, limit int) ([]models.Message, error) {
	f.gotLimit = limit
	return nil, nil
}

type fixture struct {
	users    *fakeUsers
	accounts *fakeAccounts
	chat     *fakeChat
	server   *GRPCServer
	conn     *grpc.ClientConn
}

// newFixture serves a GRPCServer over an in-memory listener.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{users: &fakeUsers{}, accounts: &fakeAccounts{}, chat: &fakeChat{}}
	f.server = NewGRPCServer("bufnet", logging.Nop{}, f.users, f.accounts, f.chat)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.server.Serve(ctx, lis)
		close(done)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient error: %v", err)
	}
	f.conn = conn

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return f
}

func (f *fixture) call(ctx context.Context, method string, in, out any) error {
	return f.conn.Invoke(ctx, FullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), common.AuthorizationHeaderName, common.BearerPrefix+token)
}
