// Command mailer drains the notification queue and delivers each message
// over SMTP.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/config"
	"github.com/dmitrijs2005/activationgate/internal/server/mailer"
)

func main() {

	cfg := config.LoadConfig()
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP URL is not configured (AMQP_URL or -q)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	deliverer := mailer.NewSMTPDeliverer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
	consumer := mailer.NewConsumer(cfg.AMQPURL, cfg.NotificationQueue, deliverer, logger)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%v", err)
	}

}
