package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Deliverer hands a message to its final transport.
type Deliverer interface {
	Deliver(ctx context.Context, msg activation.Message) error
}

// Consumer reads the notification queue and delivers each message. It
// reconnects with exponential backoff until its context is cancelled.
type Consumer struct {
	url       string
	queue     string
	deliverer Deliverer
	logger    logging.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewConsumer(url, queue string, d Deliverer, l logging.Logger) *Consumer {
	return &Consumer{
		url:        url,
		queue:      queue,
		deliverer:  d,
		logger:     l.With("module", "mail_consumer"),
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn(ctx, "failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < c.maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = c.minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn(ctx, "consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn(ctx, "set QoS failed", "error", err)
	}

	if _, err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.logger.Info(ctx, "consuming", "queue", c.queue)
	for d := range msgs {
		c.handle(ctx, d)
	}
	return errors.New("deliveries channel closed")
}

// handle acks delivered messages. Undecodable messages are dropped; a
// failed delivery is requeued once, then dropped.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg activation.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error(ctx, "undecodable message dropped", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.deliverer.Deliver(ctx, msg); err != nil {
		c.logger.Warn(ctx, "delivery failed", "to", msg.To, "redelivered", d.Redelivered, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	c.logger.Info(ctx, "mail delivered", "to", msg.To, "subject", msg.Subject)
	_ = d.Ack(false)
}
