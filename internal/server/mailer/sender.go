// Package mailer moves activation mails out of the request path. The server
// publishes them to an AMQP queue (or just logs them); the mailer binary
// consumes the queue and delivers over SMTP.
package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// DefaultDialTimeout bounds the TCP connect and AMQP handshake when the
// caller's context carries no earlier deadline.
const DefaultDialTimeout = 5 * time.Second

var errSenderClosed = errors.New("sender closed")

// AMQPSender publishes messages as persistent JSON to a durable queue. The
// channel is opened lazily and reopened after a failure. The lock is never
// held while dialing, so a stalled broker only holds up the Send that dials.
type AMQPSender struct {
	url         string
	queue       string
	dialTimeout time.Duration

	mu     sync.Mutex
	ch     publisher
	closed bool
	// open is replaced in tests.
	open func(ctx context.Context) (publisher, error)
}

func NewAMQPSender(url, queue string) *AMQPSender {
	s := &AMQPSender{url: url, queue: queue, dialTimeout: DefaultDialTimeout}
	s.open = s.dial
	return s
}

// link owns the connection behind a channel; closing it closes both.
type link struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (l link) Close() error {
	_ = l.Channel.Close()
	return l.conn.Close()
}

// dialer connects with ctx and leaves a deadline on the socket that covers
// the handshake. The client clears it once the connection is open.
func (s *AMQPSender) dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(s.dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}

		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (s *AMQPSender) dial(ctx context.Context) (publisher, error) {
	conn, err := amqp.DialConfig(s.url, amqp.Config{Locale: "en_US", Dial: s.dialer(ctx)})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}

	if _, err := declareQueue(ch, s.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return link{Channel: ch, conn: conn}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

// channel returns the open channel, dialing one outside the lock if needed.
// When two Sends dial at once the first to finish wins.
func (s *AMQPSender) channel(ctx context.Context) (publisher, error) {
	s.mu.Lock()
	ch, closed := s.ch, s.closed
	s.mu.Unlock()
	if closed {
		return nil, errSenderClosed
	}
	if ch != nil {
		return ch, nil
	}

	ch, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		_ = ch.Close()
		return nil, errSenderClosed
	case s.ch != nil:
		_ = ch.Close()
		return s.ch, nil
	}
	s.ch = ch
	return ch, nil
}

// discard drops ch if it is still the current channel.
func (s *AMQPSender) discard(ch publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == ch {
		s.ch = nil
	}
	_ = ch.Close()
}

// Send implements activation.Notifier.
func (s *AMQPSender) Send(ctx context.Context, msg activation.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := s.channel(ctx)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.discard(ch)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ch != nil {
		_ = s.ch.Close()
		s.ch = nil
	}
	return nil
}

// LogSender writes each message to the logger instead of sending it. The
// activation code is part of the body, so this is meant for development.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, msg activation.Message) error {
	s.logger.Info(ctx, "mail", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
