// Package services contains server-side business logic. UserService handles
// registration and the two-phase login that runs the activation gate ahead
// of the password check.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/auth"
	"github.com/dmitrijs2005/activationgate/internal/server/config"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/repomanager"
)

// ErrIncorrectPassword is returned by Login when the account exists and the
// gate let the attempt through, but the password is wrong.
var ErrIncorrectPassword = errors.New("incorrect password")

type RegisterRequest struct {
	UserName string
	Email    string
	Password string
	Admin    bool
}

type LoginRequest struct {
	UserName       string
	Password       string
	ActivationCode string
}

// Session is what a successful login hands back.
type Session struct {
	UserID      string
	UserName    string
	Admin       bool
	AccessToken string
	Activated   bool
}

type UserService struct {
	repomanager                 repomanager.RepositoryManager
	gate                        *activation.Gate
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, gate *activation.Gate, cfg *config.Config, l logging.Logger) *UserService {
	if l == nil {
		l = logging.Nop()
	}
	return &UserService{
		repomanager:                 m,
		gate:                        gate,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      l.With("module", "user_service"),
	}
}

func validateRegistration(req RegisterRequest) error {
	var problems []string
	if strings.TrimSpace(req.UserName) == "" {
		problems = append(problems, "username is empty")
	}
	if req.Password == "" {
		problems = append(problems, "password is empty")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		problems = append(problems, "email is invalid")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, ", "))
	}
	return nil
}

// Register creates the account and hands it to the activation gate, which
// stores a pending code and mails it.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     strings.TrimSpace(req.UserName),
		Email:        req.Email,
		PasswordHash: auth.HashPassword(req.Password),
		IsAdmin:      req.Admin,
	}

	u, err := s.repomanager.Users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if _, err := s.gate.OnRegister(ctx, u.ID); err != nil {
		s.logger.Error(ctx, "activation code not issued", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("error issuing activation code: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "username", u.UserName)
	return u, nil
}

// EnsureAdmin creates an administrator account that is already activated,
// unless an account with that username exists. It reports whether the
// account was created. No activation mail is sent.
func (s *UserService) EnsureAdmin(ctx context.Context, req RegisterRequest) (bool, error) {
	req.Admin = true
	if err := validateRegistration(req); err != nil {
		return false, err
	}

	_, err := s.repomanager.Users().GetUserByLogin(ctx, strings.TrimSpace(req.UserName))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error looking up admin: %w", err)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		u, err := m.Users().Create(ctx, &models.User{
			UserName:     strings.TrimSpace(req.UserName),
			Email:        req.Email,
			PasswordHash: auth.HashPassword(req.Password),
			IsAdmin:      true,
		})
		if err != nil {
			return err
		}
		return m.UserMeta().Set(ctx, u.ID, activation.AttributeKey, activation.ConsumedValue)
	})
	if err != nil {
		return false, fmt.Errorf("error creating admin: %w", err)
	}

	s.logger.Info(ctx, "administrator created", "username", req.UserName)
	return true, nil
}

// Login runs the gate first. A denial is returned as is (one of the
// activation errors); on a code mismatch the password is not looked at.
// The code is consumed only once the password has been accepted too.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	res, err := s.gate.Authenticate(ctx, activation.LoginAttempt{
		Login:    req.UserName,
		Password: req.Password,
		Code:     req.ActivationCode,
	}, activation.Undecided())
	if err != nil {
		s.logger.Error(ctx, "activation check failed", "error", err)
		return nil, common.ErrorInternal
	}
	if res.IsDenied() {
		return nil, res.Err
	}
	if res.SkipPasswordCheck {
		return nil, activation.ErrActivationCodeMismatch
	}

	user, err := s.repomanager.Users().GetUserByLogin(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, activation.ErrUnknownUser
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, ErrIncorrectPassword
	}

	if res.CommitRequired {
		if err := s.gate.CommitLogin(ctx, user.UserName); err != nil {
			s.logger.Error(ctx, "activation commit failed", "user_id", user.ID, "error", err)
			return nil, common.ErrorInternal
		}
		s.logger.Info(ctx, "account activated", "user_id", user.ID)
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{
		UserID:      user.ID,
		UserName:    user.UserName,
		Admin:       user.IsAdmin,
		AccessToken: token,
		Activated:   res.CommitRequired,
	}, nil
}

// UserIDByName resolves a username for the admin surface.
func (s *UserService) UserIDByName(ctx context.Context, userName string) (string, error) {
	u, err := s.repomanager.Users().GetUserByLogin(ctx, userName)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
