package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/bierclub/bier/internal/server/models"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bier.auth.v1.AuthService"

// AuthServiceServer is implemented by GRPCServer.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *Empty) (*OKResponse, error)
	Me(context.Context, *Empty) (*models.User, error)
	VerifyEmail(context.Context, *TokenRequest) (*OKResponse, error)
	ResendVerification(context.Context, *Empty) (*OKResponse, error)
	ForgotPassword(context.Context, *ForgotPasswordRequest) (*OKResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*OKResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*models.Message, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
}

// FullMethod returns the method path used on the wire and in interceptors.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// protectedMethods need a bearer token.
var protectedMethods = map[string]bool{
	FullMethod("Logout"):             true,
	FullMethod("Me"):                 true,
	FullMethod("ResendVerification"): true,
	FullMethod("SendMessage"):        true,
	FullMethod("ListMessages"):       true,
}

// unary builds a MethodDesc that decodes Req, runs the interceptor chain
// and calls the server method.
func unary[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthServiceDesc describes the service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("Logout", AuthServiceServer.Logout),
		unary("Me", AuthServiceServer.Me),
		unary("VerifyEmail", AuthServiceServer.VerifyEmail),
		unary("ResendVerification", AuthServiceServer.ResendVerification),
		unary("ForgotPassword", AuthServiceServer.ForgotPassword),
		unary("ResetPassword", AuthServiceServer.ResetPassword),
		unary("SendMessage", AuthServiceServer.SendMessage),
		unary("ListMessages", AuthServiceServer.ListMessages),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bier/auth/v1/auth.json",
}
