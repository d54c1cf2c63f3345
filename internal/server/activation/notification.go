package activation

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/activationgate/internal/common"
)

// Message is one outbound mail.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers messages out of band.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// MailSettings feeds the mail templates.
type MailSettings struct {
	SiteName   string
	LoginURL   string
	AdminEmail string
}

// NotificationHooks let an integrator adjust the activation mail before it
// is sent. Each hook receives the default value and returns the one to use.
type NotificationHooks struct {
	Recipient func(account Account, to string) string
	Subject   func(account Account, subject string) string
	Body      func(account Account, code, body string) string
}

// ActivationLink returns loginURL with the code attached as the
// activation_code query parameter. An unparsable loginURL is returned with
// the parameter appended verbatim.
func ActivationLink(loginURL, code string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		sep := "?"
		if strings.Contains(loginURL, "?") {
			sep = "&"
		}
		return loginURL + sep + common.ActivationCodeField + "=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set(common.ActivationCodeField, code)
	u.RawQuery = q.Encode()
	return u.String()
}

// ActivationMessage assembles the mail that carries code to account, with
// the hooks applied.
func (g *Gate) ActivationMessage(account Account, code string) Message {
	msg := Message{
		To:      account.Email,
		Subject: fmt.Sprintf("[%s] Your username and activation code", g.mail.SiteName),
		Body: fmt.Sprintf("Username: %s\r\n", account.Login) +
			fmt.Sprintf("Activation Code: %s\r\n\r\n", code) +
			ActivationLink(g.mail.LoginURL, code) + "\r\n",
	}

	if g.hooks.Recipient != nil {
		msg.To = g.hooks.Recipient(account, msg.To)
	}
	if g.hooks.Subject != nil {
		msg.Subject = g.hooks.Subject(account, msg.Subject)
	}
	if g.hooks.Body != nil {
		msg.Body = g.hooks.Body(account, code, msg.Body)
	}
	return msg
}

// AdminMessage assembles the "new user" notice for the site administrator.
func (g *Gate) AdminMessage(account Account) Message {
	return Message{
		To:      g.mail.AdminEmail,
		Subject: fmt.Sprintf("[%s] New User Registration", g.mail.SiteName),
		Body: fmt.Sprintf("New user registration on your site %s:\r\n\r\n", g.mail.SiteName) +
			fmt.Sprintf("Username: %s\r\n\r\n", account.Login) +
			fmt.Sprintf("E-mail: %s\r\n", account.Email),
	}
}

// notifyRegistration sends both registration mails. Delivery is best
// effort: failures are logged and never reach the caller.
func (g *Gate) notifyRegistration(ctx context.Context, account Account, code string) {
	if g.notifier == nil {
		return
	}

	if g.mail.AdminEmail != "" {
		if err := g.send(ctx, g.AdminMessage(account)); err != nil {
			g.logger.Warn(ctx, "admin notification failed", "account_id", account.ID, "error", err)
		}
	}

	msg := g.ActivationMessage(account, code)
	if msg.To == "" {
		g.logger.Warn(ctx, "activation mail has no recipient", "account_id", account.ID)
		return
	}
	if err := g.send(ctx, msg); err != nil {
		g.logger.Warn(ctx, "activation mail failed", "account_id", account.ID, "error", err)
	}
}

func (g *Gate) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, g.notifyTimeout)
	defer cancel()
	return g.notifier.Send(ctx, msg)
}
