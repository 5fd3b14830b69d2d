// Command worker consumes notification tasks from Redis and sends them by email.
package main

import (
	"log"
	"log/slog"
	"os"

	"holidaymatch/config"
	"holidaymatch/internal/adapters/email"
	"holidaymatch/internal/adapters/queue"
	"holidaymatch/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, "worker")
	slog.SetDefault(logger)

	if cfg.RedisURL == "" {
		logger.Error("REDIS_URL is required for the worker")
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("failed to load email templates", "err", err)
		os.Exit(1)
	}
	emails := services.NewEmailService(mailer, renderer, cfg.SiteURL, logger)

	srv, mux, err := queue.NewServer(queue.ServerConfig{
		RedisURL:    cfg.RedisURL,
		Concurrency: cfg.AsynqConcurrency,
		Logger:      logger,
	}, emails)
	if err != nil {
		logger.Error("failed to create worker", "err", err)
		os.Exit(1)
	}

	logger.Info("worker starting", "queue", queue.NotificationQueue, "concurrency", cfg.AsynqConcurrency)
	// Run blocks until SIGINT or SIGTERM and then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		logger.Error("worker exited", "err", err)
		os.Exit(1)
	}
}
