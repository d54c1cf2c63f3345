package activation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivationLink(t *testing.T) {
	tests := []struct {
		login string
		code  string
		want  string
	}{
		{"https://blog.example/login", "abc#def234", "https://blog.example/login?activation_code=abc%23def234"},
		{"https://blog.example/login?action=login", "abcdefgh23", "https://blog.example/login?action=login&activation_code=abcdefgh23"},
		{"/login", "abcdefgh23", "/login?activation_code=abcdefgh23"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ActivationLink(tt.login, tt.code))
	}
}

func TestActivationMessage_Defaults(t *testing.T) {
	gate := New(newFakeDirectory(), WithMailSettings(MailSettings{SiteName: "Blog", LoginURL: "https://blog.example/login"}))

	msg := gate.ActivationMessage(bob, "abcdefgh23")
	assert.Equal(t, "bob@example.com", msg.To)
	assert.Equal(t, "[Blog] Your username and activation code", msg.Subject)
	assert.Contains(t, msg.Body, "Username: bob")
	assert.Contains(t, msg.Body, "Activation Code: abcdefgh23")
	assert.Contains(t, msg.Body, "https://blog.example/login?activation_code=abcdefgh23")
}

func TestActivationMessage_Hooks(t *testing.T) {
	hooks := NotificationHooks{
		Recipient: func(a Account, to string) string { return "audit+" + a.Login + "@example.com" },
		Subject:   func(_ Account, s string) string { return strings.ToUpper(s) },
		Body:      func(_ Account, code, body string) string { return "code=" + code },
	}
	gate := New(newFakeDirectory(), WithMailSettings(MailSettings{SiteName: "Blog"}), WithNotificationHooks(hooks))

	msg := gate.ActivationMessage(bob, "abcdefgh23")
	assert.Equal(t, "audit+bob@example.com", msg.To)
	assert.Equal(t, "[BLOG] YOUR USERNAME AND ACTIVATION CODE", msg.Subject)
	assert.Equal(t, "code=abcdefgh23", msg.Body)
}

func TestAdminMessage(t *testing.T) {
	gate := New(newFakeDirectory(), WithMailSettings(MailSettings{SiteName: "Blog", AdminEmail: "admin@example.com"}))

	msg := gate.AdminMessage(bob)
	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "[Blog] New User Registration", msg.Subject)
	assert.Contains(t, msg.Body, "Username: bob")
	assert.Contains(t, msg.Body, "E-mail: bob@example.com")
}
