// Command mailer consumes queued activation messages and delivers them over SMTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tesoro/internal/config"
	"tesoro/internal/logger"
	"tesoro/internal/mailer"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Mailer error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithOptions(logger.Options{Env: cfg.Env, File: cfg.LogFile})
	defer logger.Sync()
	log := logger.Get()

	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required")
	}
	if cfg.SMTPHost == "" {
		return errors.New("SMTP_HOST is required")
	}

	queue, err := mailer.NewQueue(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("failed to connect to mail queue: %w", err)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			log.Warnf("mail queue close error: %v", err)
		}
	}()

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		BaseURL:  cfg.FrontendURL,
		TokenTTL: cfg.ActivationTokenTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := queue.Consume(gctx, sender)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	log.Info("Mailer started")
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Mailer stopped")
	return nil
}
