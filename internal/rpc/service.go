package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "activation.v1.ActivationService"

// Full method names, as seen by interceptors.
const (
	MethodPing              = "/" + ServiceName + "/Ping"
	MethodRegister          = "/" + ServiceName + "/Register"
	MethodLogin             = "/" + ServiceName + "/Login"
	MethodGetActivationCode = "/" + ServiceName + "/GetActivationCode"
	MethodSetActivationCode = "/" + ServiceName + "/SetActivationCode"
	MethodListAccounts      = "/" + ServiceName + "/ListAccounts"
	MethodInstallBackfill   = "/" + ServiceName + "/InstallBackfill"
	MethodUninstallCleanup  = "/" + ServiceName + "/UninstallCleanup"
)

// AdminMethods require an administrator access token.
var AdminMethods = map[string]bool{
	MethodGetActivationCode: true,
	MethodSetActivationCode: true,
	MethodListAccounts:      true,
	MethodInstallBackfill:   true,
	MethodUninstallCleanup:  true,
}

type ActivationServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	GetActivationCode(context.Context, *GetActivationCodeRequest) (*ActivationCodeResponse, error)
	SetActivationCode(context.Context, *SetActivationCodeRequest) (*SetActivationCodeResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	InstallBackfill(context.Context, *BulkRequest) (*BulkResponse, error)
	UninstallCleanup(context.Context, *BulkRequest) (*BulkResponse, error)
}

func RegisterActivationServiceServer(s grpc.ServiceRegistrar, srv ActivationServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](fullMethod string, call func(ActivationServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ActivationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ActivationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ActivationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(MethodPing, ActivationServiceServer.Ping)},
		{MethodName: "Register", Handler: unary(MethodRegister, ActivationServiceServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, ActivationServiceServer.Login)},
		{MethodName: "GetActivationCode", Handler: unary(MethodGetActivationCode, ActivationServiceServer.GetActivationCode)},
		{MethodName: "SetActivationCode", Handler: unary(MethodSetActivationCode, ActivationServiceServer.SetActivationCode)},
		{MethodName: "ListAccounts", Handler: unary(MethodListAccounts, ActivationServiceServer.ListAccounts)},
		{MethodName: "InstallBackfill", Handler: unary(MethodInstallBackfill, ActivationServiceServer.InstallBackfill)},
		{MethodName: "UninstallCleanup", Handler: unary(MethodUninstallCleanup, ActivationServiceServer.UninstallCleanup)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "activation/v1/activation.json",
}
