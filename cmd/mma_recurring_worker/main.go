// The worker is a non-HTTP, long-running process that generates due occurrences
// of auto-generating definitions and publishes reminders on cron schedules.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/mma_recurring/internal/adapters/messaging/amqp"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/core/services"
	"github.com/SscSPs/mma_recurring/internal/platform/config"
	"github.com/SscSPs/mma_recurring/internal/platform/storage"
	"github.com/SscSPs/mma_recurring/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The API server owns migrations.
	repos, closeStorage, err := storage.Open(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	var publisher portsrepo.ReminderPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := amqp.NewReminderPublisher(cfg.AMQPURL, cfg.ReminderExchange, cfg.ReminderRoutingKey)
		if err != nil {
			logger.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("reminder publisher connected", "exchange", cfg.ReminderExchange)
	}

	container := services.NewServiceContainer(cfg, repos, publisher)
	jobs := worker.NewJobs(container.Sweep, logger)
	scheduler := worker.NewScheduler(jobs, logger, cfg.GenerateSchedule, cfg.ReminderSchedule)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	logger.Info("scheduler started")

	<-ctx.Done()

	logger.Info("shutdown signal received, stopping scheduler")
	<-scheduler.Stop().Done() // Wait for running jobs to finish
	logger.Info("scheduler stopped gracefully")
}
