package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/schedule"
	"golang.org/x/sync/errgroup"
)

// sweepService runs the worker jobs. Failures of single definitions are counted
// and logged, they never abort a run.
type sweepService struct {
	BaseService
	recurringRepo portsrepo.RecurringReader
	overrideRepo  portsrepo.OverrideReader
	paymentRepo   portsrepo.PaymentReader
	generator     portssvc.GeneratorSvc
	publisher     portsrepo.ReminderPublisher
	concurrency   int
}

// NewSweepService creates the worker jobs. publisher may be nil, in which case
// reminders are only logged.
func NewSweepService(repos portsrepo.RepositoryProvider, generator portssvc.GeneratorSvc, publisher portsrepo.ReminderPublisher, concurrency int, options ...ServiceOption) portssvc.SweepSvc {
	if concurrency < 1 {
		concurrency = 1
	}
	svc := &sweepService{
		recurringRepo: repos.RecurringRepo,
		overrideRepo:  repos.OverrideRepo,
		paymentRepo:   repos.PaymentRepo,
		generator:     generator,
		publisher:     publisher,
		concurrency:   concurrency,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.SweepSvc = (*sweepService)(nil)

// tally is a SweepReport safe for concurrent updates.
type tally struct {
	mu     sync.Mutex
	report portssvc.SweepReport
}

func (t *tally) add(processed, skipped, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Processed += processed
	t.report.Skipped += skipped
	t.report.Failed += failed
}

func (s *sweepService) activeWhere(ctx context.Context, keep func(*domain.RecurringDefinition) bool) ([]domain.RecurringDefinition, error) {
	all, err := s.recurringRepo.ListActiveRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recurring definitions: %w", err)
	}
	var defs []domain.RecurringDefinition
	for i := range all {
		if keep(&all[i]) {
			defs = append(defs, all[i])
		}
	}
	return defs, nil
}

func (s *sweepService) GenerateDue(ctx context.Context, asOf time.Time) (portssvc.SweepReport, error) {
	asOf = schedule.DateOf(asOf)
	defs, err := s.activeWhere(ctx, func(d *domain.RecurringDefinition) bool { return d.AutoGenerate })
	if err != nil {
		s.LogError(ctx, err, "Auto-generation sweep could not list definitions")
		return portssvc.SweepReport{}, err
	}
	state, err := loadPeriodState(ctx, s.overrideRepo, s.paymentRepo, defs)
	if err != nil {
		s.LogError(ctx, err, "Auto-generation sweep could not load period state")
		return portssvc.SweepReport{}, err
	}

	t := &tally{report: portssvc.SweepReport{Definitions: len(defs)}}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range defs {
		def := &defs[i]
		g.Go(func() error {
			s.generateDueFor(gctx, def, state, asOf, t)
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Auto-generation sweep finished",
		slog.Int("definitions", t.report.Definitions),
		slog.Int("generated", t.report.Processed),
		slog.Int("skipped", t.report.Skipped),
		slog.Int("failed", t.report.Failed))
	return t.report, nil
}

// generateDueFor generates the definition's periods in order so installment
// counters advance in schedule order.
func (s *sweepService) generateDueFor(ctx context.Context, def *domain.RecurringDefinition, state *periodState, asOf time.Time, t *tally) {
	for _, p := range schedule.PeriodsBetween(def.StartDate, asOf) {
		if ctx.Err() != nil {
			return
		}
		occ, ok, err := state.resolve(def, p, asOf)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve occurrence", slog.String("recurring_id", def.RecurringID))
			t.add(0, 0, 1)
			return
		}
		if !ok {
			continue
		}
		if !occ.Actionable() || occ.DueDate.After(asOf) {
			if occ.Status == domain.StatusSkipped {
				t.add(0, 1, 0)
			}
			continue
		}
		res, err := s.generator.Generate(ctx, def.UserID, def.RecurringID, p.Month, p.Year)
		if err != nil {
			s.LogError(ctx, err, "Auto-generation failed", slog.String("period", occ.Key.String()))
			t.add(0, 0, 1)
			// Later installments must not be generated ahead of a failed one.
			return
		}
		if res.AlreadyGenerated {
			t.add(0, 1, 0)
			continue
		}
		t.add(1, 0, 0)
	}
}

func (s *sweepService) SendReminders(ctx context.Context, asOf time.Time) (portssvc.SweepReport, error) {
	asOf = schedule.DateOf(asOf)
	defs, err := s.activeWhere(ctx, func(d *domain.RecurringDefinition) bool { return d.NotifyDaysBefore > 0 })
	if err != nil {
		s.LogError(ctx, err, "Reminder job could not list definitions")
		return portssvc.SweepReport{}, err
	}
	state, err := loadPeriodState(ctx, s.overrideRepo, s.paymentRepo, defs)
	if err != nil {
		s.LogError(ctx, err, "Reminder job could not load period state")
		return portssvc.SweepReport{}, err
	}

	t := &tally{report: portssvc.SweepReport{Definitions: len(defs)}}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range defs {
		def := &defs[i]
		g.Go(func() error {
			s.remind(gctx, def, state, asOf, t)
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Reminder job finished",
		slog.Int("definitions", t.report.Definitions),
		slog.Int("sent", t.report.Processed),
		slog.Int("skipped", t.report.Skipped),
		slog.Int("failed", t.report.Failed))
	return t.report, nil
}

// remind publishes one reminder when the definition has an occurrence exactly
// NotifyDaysBefore days after asOf that still needs action.
func (s *sweepService) remind(ctx context.Context, def *domain.RecurringDefinition, state *periodState, asOf time.Time, t *tally) {
	target := asOf.AddDate(0, 0, def.NotifyDaysBefore)
	occ, ok, err := state.resolve(def, schedule.PeriodOf(target), asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve occurrence", slog.String("recurring_id", def.RecurringID))
		t.add(0, 0, 1)
		return
	}
	if !ok || !occ.DueDate.Equal(target) {
		return
	}
	if occ.Status != domain.StatusDue {
		t.add(0, 1, 0)
		return
	}

	reminder := domain.Reminder{
		Event:       domain.ReminderEventDueSoon,
		UserID:      def.UserID,
		RecurringID: def.RecurringID,
		Name:        def.Name,
		Kind:        def.Kind,
		Amount:      occ.Amount,
		DueDate:     occ.DueDate,
		Month:       occ.Key.Month,
		Year:        occ.Key.Year,
		DaysBefore:  def.NotifyDaysBefore,
	}
	if s.publisher == nil {
		s.LogInfo(ctx, "Reminder due (no publisher configured)", slog.String("period", occ.Key.String()), slog.String("user_id", def.UserID))
		t.add(1, 0, 0)
		return
	}
	if err := s.publisher.PublishReminder(ctx, reminder); err != nil {
		s.LogError(ctx, err, "Failed to publish reminder", slog.String("period", occ.Key.String()))
		t.add(0, 0, 1)
		return
	}
	t.add(1, 0, 0)
}
