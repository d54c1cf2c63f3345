package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionExpired  = errors.New("session expired, log in again")
	ErrForbidden       = errors.New("administrator rights required")
	ErrNotFound        = errors.New("account not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
