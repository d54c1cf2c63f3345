package activation

import (
	"errors"
	"strings"
)

// Expected outcomes of a login attempt or an admin call. None of them is a
// fault; they are carried in Result.Err or returned from the admin methods.
var (
	ErrMissingCredentials     = errors.New("missing credentials")
	ErrUnknownUser            = errors.New("unknown user")
	ErrActivationCodeMismatch = errors.New("activation code mismatch")
	ErrUnauthorized           = errors.New("unauthorized")
)

// Credential field names reported by MissingCredentialsError.
const (
	FieldLogin    = "login"
	FieldPassword = "password"
)

// MissingCredentialsError lists which of the credential fields were empty.
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return ErrMissingCredentials.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingCredentialsError) Unwrap() error { return ErrMissingCredentials }

// Has reports whether field was among the empty ones.
func (e *MissingCredentialsError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// UserMessage returns the text shown on the login form for err.
func UserMessage(err error) string {
	var missing *MissingCredentialsError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &missing):
		var msgs []string
		if missing.Has(FieldLogin) {
			msgs = append(msgs, "ERROR: The username field is empty.")
		}
		if missing.Has(FieldPassword) {
			msgs = append(msgs, "ERROR: The password field is empty.")
		}
		return strings.Join(msgs, " ")
	case errors.Is(err, ErrUnknownUser):
		return "ERROR: Invalid username."
	case errors.Is(err, ErrActivationCodeMismatch):
		return "ERROR: Sorry, that activation code does not match. Please try again. You can find the activation code in your welcome email."
	case errors.Is(err, ErrUnauthorized):
		return "ERROR: You are not allowed to change activation codes."
	default:
		return "ERROR: Login failed."
	}
}
