// Package worker runs the recurring sweeps on cron schedules.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron             *cron.Cron
	jobs             *Jobs
	logger           *slog.Logger
	generateSchedule string
	reminderSchedule string
}

// NewScheduler creates a new scheduler instance. An empty schedule disables its job.
func NewScheduler(jobs *Jobs, logger *slog.Logger, generateSchedule, reminderSchedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:             c,
		jobs:             jobs,
		logger:           logger,
		generateSchedule: generateSchedule,
		reminderSchedule: reminderSchedule,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if err := s.add("generate", s.generateSchedule, s.jobs.GenerateDue); err != nil {
		return err
	}
	if err := s.add("reminders", s.reminderSchedule, s.jobs.SendReminders); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) add(name, spec string, job func()) error {
	if spec == "" {
		s.logger.Warn("job disabled, no schedule", slog.String("job", name))
		return nil
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %s job %q: %w", name, spec, err)
	}
	s.logger.Info("scheduled job", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Stop gracefully stops the cron scheduler. The returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
