package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAPI struct {
	lastLoginReq *rpc.LoginRequest
	lastGetReq   *rpc.GetActivationCodeRequest
	lastSetReq   *rpc.SetActivationCodeRequest
	lastListReq  *rpc.ListAccountsRequest
	bulkCalls    []string

	pingResp  *rpc.PingResponse
	pingErr   error
	loginResp *rpc.LoginResponse
	loginErr  error
	getResp   *rpc.ActivationCodeResponse
	getErr    error
	setErr    error
	listResp  *rpc.ListAccountsResponse
	listErr   error
	bulkResp  *rpc.BulkResponse
	bulkErr   error
}

func (f *fakeAPI) Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error) {
	return f.pingResp, f.pingErr
}
func (f *fakeAPI) Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error) {
	f.lastLoginReq = in
	return f.loginResp, f.loginErr
}
func (f *fakeAPI) GetActivationCode(ctx context.Context, in *rpc.GetActivationCodeRequest, opts ...grpc.CallOption) (*rpc.ActivationCodeResponse, error) {
	f.lastGetReq = in
	return f.getResp, f.getErr
}
func (f *fakeAPI) SetActivationCode(ctx context.Context, in *rpc.SetActivationCodeRequest, opts ...grpc.CallOption) (*rpc.SetActivationCodeResponse, error) {
	f.lastSetReq = in
	return &rpc.SetActivationCodeResponse{}, f.setErr
}
func (f *fakeAPI) ListAccounts(ctx context.Context, in *rpc.ListAccountsRequest, opts ...grpc.CallOption) (*rpc.ListAccountsResponse, error) {
	f.lastListReq = in
	return f.listResp, f.listErr
}
func (f *fakeAPI) InstallBackfill(ctx context.Context, in *rpc.BulkRequest, opts ...grpc.CallOption) (*rpc.BulkResponse, error) {
	f.bulkCalls = append(f.bulkCalls, "backfill")
	return f.bulkResp, f.bulkErr
}
func (f *fakeAPI) UninstallCleanup(ctx context.Context, in *rpc.BulkRequest, opts ...grpc.CallOption) (*rpc.BulkResponse, error) {
	f.bulkCalls = append(f.bulkCalls, "cleanup")
	return f.bulkResp, f.bulkErr
}

func TestInterceptor_AttachesTokenToAdminMethods(t *testing.T) {
	c := &GRPCClient{accessToken: "A1"}

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		seen = append(seen, method+"="+firstOrEmpty(md.Get(common.AccessTokenHeaderName)))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), rpc.MethodGetActivationCode, nil, nil, nil, invoker))
	require.NoError(t, c.accessTokenInterceptor(context.Background(), rpc.MethodLogin, nil, nil, nil, invoker))

	assert.Equal(t, []string{rpc.MethodGetActivationCode + "=A1", rpc.MethodLogin + "="}, seen)
}

func TestInterceptor_ReplacesExistingToken(t *testing.T) {
	c := &GRPCClient{accessToken: "new"}
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old")

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(ctx, rpc.MethodListAccounts, nil, nil, nil, invoker))
}

func firstOrEmpty(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func TestLogin_StoresToken(t *testing.T) {
	f := &fakeAPI{loginResp: &rpc.LoginResponse{UserID: "u1", AccessToken: "tok", Admin: true}}
	c := &GRPCClient{client: f}

	resp, err := c.Login(context.Background(), "admin", "pw", "code")
	require.NoError(t, err)
	assert.True(t, resp.Admin)
	assert.Equal(t, "tok", c.token())
	assert.Equal(t, &rpc.LoginRequest{Username: "admin", Password: "pw", ActivationCode: "code"}, f.lastLoginReq)
}

func TestLogin_KeepsServerMessage(t *testing.T) {
	f := &fakeAPI{loginErr: status.Error(codes.Unauthenticated, "ERROR: Invalid username.")}
	c := &GRPCClient{client: f}

	_, err := c.Login(context.Background(), "x", "y", "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid username")
	assert.Empty(t, c.token())
}

func TestPing(t *testing.T) {
	c := &GRPCClient{client: &fakeAPI{pingResp: &rpc.PingResponse{Status: "OK"}}}
	require.NoError(t, c.Ping(context.Background()))

	c = &GRPCClient{client: &fakeAPI{pingResp: &rpc.PingResponse{Status: "DOWN"}}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	c = &GRPCClient{client: &fakeAPI{pingErr: status.Error(codes.Unavailable, "no route")}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestAdminCalls_PassRequests(t *testing.T) {
	f := &fakeAPI{
		getResp:  &rpc.ActivationCodeResponse{UserID: "u1", State: rpc.StatePending, Code: "abc"},
		listResp: &rpc.ListAccountsResponse{Accounts: []rpc.AccountInfo{{UserID: "u1"}}},
		bulkResp: &rpc.BulkResponse{Scanned: 3, Changed: 1, Batches: 1},
	}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	got, err := c.GetActivationCode(ctx, rpc.AccountRef{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Code)
	assert.Equal(t, "bob", f.lastGetReq.Account.Username)

	require.NoError(t, c.SetActivationCode(ctx, rpc.AccountRef{UserID: "u1"}, "active"))
	assert.Equal(t, "active", f.lastSetReq.Value)

	list, err := c.ListAccounts(ctx, rpc.ListAccountsRequest{SortBy: "state", Desc: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "state", f.lastListReq.SortBy)
	assert.True(t, f.lastListReq.Desc)

	rep, err := c.InstallBackfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Changed)
	_, err = c.UninstallCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"backfill", "cleanup"}, f.bulkCalls)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	plain := errors.New("plain")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not a status", plain, plain},
		{"expired", status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error()), ErrSessionExpired},
		{"unauthenticated", status.Error(codes.Unauthenticated, "missing token"), ErrUnauthorized},
		{"permission", status.Error(codes.PermissionDenied, "nope"), ErrForbidden},
		{"not found", status.Error(codes.NotFound, "not found"), ErrNotFound},
		{"invalid", status.Error(codes.InvalidArgument, "bad sort"), ErrInvalidArgument},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.mapError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	err := c.mapError(status.Error(codes.Internal, "boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")
}
