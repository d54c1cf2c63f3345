package grpc

import (
	"errors"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Login denials keep the
// user-facing message of the login form.
func toStatus(err error) error {
	switch {
	case errors.Is(err, activation.ErrMissingCredentials),
		errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, messageFor(err))
	case errors.Is(err, activation.ErrUnknownUser),
		errors.Is(err, activation.ErrActivationCodeMismatch),
		errors.Is(err, services.ErrIncorrectPassword):
		return status.Error(codes.Unauthenticated, messageFor(err))
	case errors.Is(err, activation.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, messageFor(err))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username already taken")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func messageFor(err error) string {
	if errors.Is(err, common.ErrorValidation) {
		return err.Error()
	}
	if errors.Is(err, services.ErrIncorrectPassword) {
		return "ERROR: The password you entered is incorrect."
	}
	return activation.UserMessage(err)
}
