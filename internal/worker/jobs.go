package worker

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/middleware"
)

// jobTimeout bounds a single sweep run.
const jobTimeout = 30 * time.Minute

// Jobs contains the scheduled tasks of the worker.
type Jobs struct {
	sweep  portssvc.SweepSvc
	logger *slog.Logger
	now    func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(sweep portssvc.SweepSvc, logger *slog.Logger) *Jobs {
	return &Jobs{
		sweep:  sweep,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateDue generates the due and overdue occurrences of auto-generating definitions.
func (j *Jobs) GenerateDue() {
	j.run("generate_due", j.sweep.GenerateDue)
}

// SendReminders publishes reminders for occurrences entering their notice window.
func (j *Jobs) SendReminders() {
	j.run("send_reminders", j.sweep.SendReminders)
}

func (j *Jobs) run(name string, job func(ctx context.Context, asOf time.Time) (portssvc.SweepReport, error)) {
	logger := j.logger.With(slog.String("job", name))
	ctx, cancel := context.WithTimeout(middleware.WithLogger(context.Background(), logger), jobTimeout)
	defer cancel()

	asOf := j.now().UTC()
	logger.Info("starting job", slog.String("as_of", asOf.Format(time.DateOnly)))
	started := time.Now()

	report, err := job(ctx, asOf)
	if err != nil {
		logger.Error("job failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("job finished",
		slog.Int("definitions", report.Definitions),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", time.Since(started)))
}
