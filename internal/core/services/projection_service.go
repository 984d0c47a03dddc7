package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/schedule"
)

// projectionService is read-only: it never writes to any store.
type projectionService struct {
	BaseService
	recurringRepo portsrepo.RecurringReader
	overrideRepo  portsrepo.OverrideReader
	paymentRepo   portsrepo.PaymentReader
}

// NewProjectionService creates the projector.
func NewProjectionService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.ProjectionSvc {
	svc := &projectionService{
		recurringRepo: repos.RecurringRepo,
		overrideRepo:  repos.OverrideRepo,
		paymentRepo:   repos.PaymentRepo,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.ProjectionSvc = (*projectionService)(nil)

// periodState is the bulk-loaded override and payment state of a set of definitions.
type periodState struct {
	overrides map[domain.PeriodKey]domain.PeriodOverride
	payments  map[domain.PeriodKey]domain.OccurrencePayment
}

func loadPeriodState(ctx context.Context, overrideRepo portsrepo.OverrideReader, paymentRepo portsrepo.PaymentReader, defs []domain.RecurringDefinition) (*periodState, error) {
	ids := make([]string, len(defs))
	for i := range defs {
		ids[i] = defs[i].RecurringID
	}
	state := &periodState{
		overrides: map[domain.PeriodKey]domain.PeriodOverride{},
		payments:  map[domain.PeriodKey]domain.OccurrencePayment{},
	}
	if len(ids) == 0 {
		return state, nil
	}
	overrides, err := overrideRepo.FindOverridesByRecurringIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	payments, err := paymentRepo.FindPaymentsByRecurringIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	if overrides != nil {
		state.overrides = overrides
	}
	if payments != nil {
		state.payments = payments
	}
	return state, nil
}

// resolve looks up the period's state and resolves it. ok is false when the
// period has no occurrence.
func (st *periodState) resolve(def *domain.RecurringDefinition, p schedule.Period, asOf time.Time) (*domain.ResolvedOccurrence, bool, error) {
	key := domain.NewPeriodKey(def.RecurringID, p.Month, p.Year)
	var override *domain.PeriodOverride
	if o, ok := st.overrides[key]; ok {
		override = &o
	}
	var payment *domain.OccurrencePayment
	if pay, ok := st.payments[key]; ok {
		payment = &pay
	}
	occ, err := ResolveOccurrence(def, p.Month, p.Year, override, payment, asOf)
	if errors.Is(err, apperrors.ErrNotScheduled) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return occ, true, nil
}

func sortOccurrences(occs []domain.ResolvedOccurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		if !occs[i].DueDate.Equal(occs[j].DueDate) {
			return occs[i].DueDate.Before(occs[j].DueDate)
		}
		return occs[i].Key.RecurringID < occs[j].Key.RecurringID
	})
}

func (s *projectionService) Upcoming(ctx context.Context, userID string, horizonDays int, asOf time.Time) ([]domain.ResolvedOccurrence, error) {
	if horizonDays < 0 {
		return nil, validationError("horizon must not be negative")
	}
	asOf = schedule.DateOf(asOf)
	until := asOf.AddDate(0, 0, horizonDays)

	defs, err := s.recurringRepo.ListActiveRecurringByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active recurring definitions")
		return nil, fmt.Errorf("failed to list recurring definitions: %w", err)
	}
	state, err := loadPeriodState(ctx, s.overrideRepo, s.paymentRepo, defs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load period state")
		return nil, err
	}

	periods := schedule.PeriodsBetween(asOf, until)
	result := []domain.ResolvedOccurrence{}
	for i := range defs {
		def := &defs[i]
		for _, p := range periods {
			occ, ok, err := state.resolve(def, p, asOf)
			if err != nil {
				return nil, err
			}
			if !ok || occ.DueDate.After(until) {
				continue
			}
			result = append(result, *occ)
		}
	}
	sortOccurrences(result)

	s.LogDebug(ctx, "Upcoming occurrences projected", slog.Int("count", len(result)), slog.Int("horizon_days", horizonDays))
	return result, nil
}

func (s *projectionService) Overdue(ctx context.Context, userID string, asOf time.Time) ([]domain.ResolvedOccurrence, error) {
	asOf = schedule.DateOf(asOf)

	defs, err := s.recurringRepo.ListActiveRecurringByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active recurring definitions")
		return nil, fmt.Errorf("failed to list recurring definitions: %w", err)
	}
	state, err := loadPeriodState(ctx, s.overrideRepo, s.paymentRepo, defs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load period state")
		return nil, err
	}

	result := []domain.ResolvedOccurrence{}
	for i := range defs {
		occs, err := state.overdue(&defs[i], asOf)
		if err != nil {
			return nil, err
		}
		result = append(result, occs...)
	}
	sortOccurrences(result)

	s.LogDebug(ctx, "Overdue occurrences projected", slog.Int("count", len(result)))
	return result, nil
}

// overdue lists the definition's overdue occurrences from its start up to asOf.
func (st *periodState) overdue(def *domain.RecurringDefinition, asOf time.Time) ([]domain.ResolvedOccurrence, error) {
	var result []domain.ResolvedOccurrence
	for _, p := range schedule.PeriodsBetween(def.StartDate, asOf) {
		occ, ok, err := st.resolve(def, p, asOf)
		if err != nil {
			return nil, err
		}
		if ok && occ.Status == domain.StatusOverdue {
			result = append(result, *occ)
		}
	}
	return result, nil
}
