package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/rpc"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	u, err := s.users.Register(ctx, services.RegisterRequest{
		UserName: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "username", req.Username, "error", err)
		return nil, toStatus(err)
	}

	return &rpc.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {

	sess, err := s.users.Login(ctx, services.LoginRequest{
		UserName:       req.Username,
		Password:       req.Password,
		ActivationCode: req.ActivationCode,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.LoginResponse{
		UserID:      sess.UserID,
		AccessToken: sess.AccessToken,
		Admin:       sess.Admin,
		Activated:   sess.Activated,
	}, nil
}

func (s *GRPCServer) resolve(ctx context.Context, ref rpc.AccountRef) (string, error) {
	if ref.UserID != "" {
		return ref.UserID, nil
	}
	if ref.Username == "" {
		return "", status.Error(codes.InvalidArgument, "user_id or username is required")
	}
	id, err := s.users.UserIDByName(ctx, ref.Username)
	if err != nil {
		return "", toStatus(err)
	}
	return id, nil
}

func stateOf(st activation.State) (state, code string) {
	if c, ok := st.Code(); ok {
		return rpc.StatePending, c
	}
	return rpc.StateConsumed, ""
}

func (s *GRPCServer) GetActivationCode(ctx context.Context, req *rpc.GetActivationCodeRequest) (*rpc.ActivationCodeResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	id, err := s.resolve(ctx, req.Account)
	if err != nil {
		return nil, err
	}

	st, err := s.admin.GetToken(ctx, id, actorFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	state, code := stateOf(st)
	return &rpc.ActivationCodeResponse{UserID: id, State: state, Code: code}, nil
}

func (s *GRPCServer) SetActivationCode(ctx context.Context, req *rpc.SetActivationCodeRequest) (*rpc.SetActivationCodeResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	id, err := s.resolve(ctx, req.Account)
	if err != nil {
		return nil, err
	}

	actor := actorFromContext(ctx)
	if err := s.admin.SetToken(ctx, id, req.Value, actor); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "activation code set", "user_id", id, "by", actor.ID)
	return &rpc.SetActivationCodeResponse{}, nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, req *rpc.ListAccountsRequest) (*rpc.ListAccountsResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	q := activation.ListQuery{Desc: req.Desc, Limit: req.Limit, Offset: req.Offset}
	switch req.SortBy {
	case "", "login", "username":
		q.SortBy = activation.SortByLogin
	case "state", "activation":
		q.SortBy = activation.SortByState
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown sort field %q", req.SortBy))
	}

	rows, err := s.admin.ListAccounts(ctx, actorFromContext(ctx), q)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &rpc.ListAccountsResponse{Accounts: make([]rpc.AccountInfo, 0, len(rows))}
	for _, r := range rows {
		state, code := stateOf(r.State)
		resp.Accounts = append(resp.Accounts, rpc.AccountInfo{
			UserID:   r.Account.ID,
			Username: r.Account.Login,
			Email:    r.Account.Email,
			Admin:    r.Account.Admin,
			State:    state,
			Code:     code,
		})
	}
	return resp, nil
}

// requireAdmin runs before any lookup, so a non-admin caller learns
// nothing about which accounts exist. The gate repeats the check for the
// single-account operations.
func (s *GRPCServer) requireAdmin(ctx context.Context) error {
	if !actorFromContext(ctx).Admin {
		return toStatus(activation.ErrUnauthorized)
	}
	return nil
}

func (s *GRPCServer) InstallBackfill(ctx context.Context, req *rpc.BulkRequest) (*rpc.BulkResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	r, err := s.admin.InstallBackfill(ctx)
	if err != nil {
		s.logger.Error(ctx, "install backfill failed", "error", err)
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}
	return &rpc.BulkResponse{Scanned: r.Scanned, Changed: r.Changed, Batches: r.Batches}, nil
}

func (s *GRPCServer) UninstallCleanup(ctx context.Context, req *rpc.BulkRequest) (*rpc.BulkResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	r, err := s.admin.UninstallCleanup(ctx)
	if err != nil {
		s.logger.Error(ctx, "uninstall cleanup failed", "error", err)
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}
	return &rpc.BulkResponse{Scanned: r.Scanned, Changed: r.Changed, Batches: r.Batches}, nil
}
