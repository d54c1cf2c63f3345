package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ActivationServiceClient is the typed client of ActivationService.
type ActivationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewActivationServiceClient(cc grpc.ClientConnInterface) *ActivationServiceClient {
	return &ActivationServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ActivationServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *ActivationServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *ActivationServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *ActivationServiceClient) GetActivationCode(ctx context.Context, in *GetActivationCodeRequest, opts ...grpc.CallOption) (*ActivationCodeResponse, error) {
	return invoke[ActivationCodeResponse](ctx, c.cc, MethodGetActivationCode, in, opts)
}

func (c *ActivationServiceClient) SetActivationCode(ctx context.Context, in *SetActivationCodeRequest, opts ...grpc.CallOption) (*SetActivationCodeResponse, error) {
	return invoke[SetActivationCodeResponse](ctx, c.cc, MethodSetActivationCode, in, opts)
}

func (c *ActivationServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, MethodListAccounts, in, opts)
}

func (c *ActivationServiceClient) InstallBackfill(ctx context.Context, in *BulkRequest, opts ...grpc.CallOption) (*BulkResponse, error) {
	return invoke[BulkResponse](ctx, c.cc, MethodInstallBackfill, in, opts)
}

func (c *ActivationServiceClient) UninstallCleanup(ctx context.Context, in *BulkRequest, opts ...grpc.CallOption) (*BulkResponse, error) {
	return invoke[BulkResponse](ctx, c.cc, MethodUninstallCleanup, in, opts)
}
