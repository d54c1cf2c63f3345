package activation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "ERROR: The username field is empty. ERROR: The password field is empty.",
		UserMessage(&MissingCredentialsError{Fields: []string{FieldLogin, FieldPassword}}))
	assert.Equal(t, "ERROR: The password field is empty.",
		UserMessage(&MissingCredentialsError{Fields: []string{FieldPassword}}))
	assert.Equal(t, "ERROR: Invalid username.", UserMessage(fmt.Errorf("wrap: %w", ErrUnknownUser)))
	assert.Contains(t, UserMessage(ErrActivationCodeMismatch), "activation code does not match")
	assert.Equal(t, "ERROR: Login failed.", UserMessage(errBoom))
}

func TestMissingCredentialsError(t *testing.T) {
	err := &MissingCredentialsError{Fields: []string{FieldLogin}}
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.True(t, err.Has(FieldLogin))
	assert.False(t, err.Has(FieldPassword))
	assert.Equal(t, "missing credentials: login", err.Error())
}
