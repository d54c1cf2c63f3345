package mailer

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/server/activation"
)

// SMTPDeliverer sends plain-text mail through one SMTP relay.
type SMTPDeliverer struct {
	addr string
	from string
	auth smtp.Auth

	now      func() time.Time
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDeliverer uses PLAIN auth when user is set.
func NewSMTPDeliverer(addr, from, user, password string) *SMTPDeliverer {
	d := &SMTPDeliverer{addr: addr, from: from, now: time.Now, sendMail: smtp.SendMail}
	if user != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		d.auth = smtp.PlainAuth("", user, password, host)
	}
	return d
}

func (d *SMTPDeliverer) Deliver(ctx context.Context, msg activation.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || msg.To == "" {
		return fmt.Errorf("invalid recipient %q", msg.To)
	}

	if err := d.sendMail(d.addr, d.auth, d.from, []string{msg.To}, d.compose(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (d *SMTPDeliverer) compose(msg activation.Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + d.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + d.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}
