package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// api is the subset of rpc.ActivationServiceClient used here.
type api interface {
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error)
	GetActivationCode(ctx context.Context, in *rpc.GetActivationCodeRequest, opts ...grpc.CallOption) (*rpc.ActivationCodeResponse, error)
	SetActivationCode(ctx context.Context, in *rpc.SetActivationCodeRequest, opts ...grpc.CallOption) (*rpc.SetActivationCodeResponse, error)
	ListAccounts(ctx context.Context, in *rpc.ListAccountsRequest, opts ...grpc.CallOption) (*rpc.ListAccountsResponse, error)
	InstallBackfill(ctx context.Context, in *rpc.BulkRequest, opts ...grpc.CallOption) (*rpc.BulkResponse, error)
	UninstallCleanup(ctx context.Context, in *rpc.BulkRequest, opts ...grpc.CallOption) (*rpc.BulkResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if rpc.AdminMethods[method] {
		ctx = withAccessToken(ctx, s.token())
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewActivationClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewActivationServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Login authenticates and keeps the access token for the admin calls that
// follow.
func (s *GRPCClient) Login(ctx context.Context, userName, password, activationCode string) (*rpc.LoginResponse, error) {
	req := &rpc.LoginRequest{Username: userName, Password: password, ActivationCode: activationCode}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()

	return resp, nil
}

func (s *GRPCClient) GetActivationCode(ctx context.Context, account rpc.AccountRef) (*rpc.ActivationCodeResponse, error) {
	resp, err := s.client.GetActivationCode(ctx, &rpc.GetActivationCodeRequest{Account: account})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SetActivationCode(ctx context.Context, account rpc.AccountRef, value string) error {
	_, err := s.client.SetActivationCode(ctx, &rpc.SetActivationCodeRequest{Account: account, Value: value})
	return s.mapError(err)
}

func (s *GRPCClient) ListAccounts(ctx context.Context, req rpc.ListAccountsRequest) ([]rpc.AccountInfo, error) {
	resp, err := s.client.ListAccounts(ctx, &req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) InstallBackfill(ctx context.Context) (*rpc.BulkResponse, error) {
	resp, err := s.client.InstallBackfill(ctx, &rpc.BulkRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) UninstallCleanup(ctx context.Context) (*rpc.BulkResponse, error) {
	resp, err := s.client.UninstallCleanup(ctx, &rpc.BulkRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// mapError keeps the server's message, which for login failures is the
// text meant for the user.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return ErrSessionExpired
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
