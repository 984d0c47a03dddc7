package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/schedule"
)

// ResolveOccurrence computes the state of one period from the definition, the
// period's override and payment (both may be nil) and the reference date asOf.
//
// A skip override wins over a payment. Otherwise a payment makes the period PAID,
// and an unpaid period is OVERDUE when its due date is before asOf's date.
func ResolveOccurrence(def *domain.RecurringDefinition, month, year int, override *domain.PeriodOverride, payment *domain.OccurrencePayment, asOf time.Time) (*domain.ResolvedOccurrence, error) {
	occ, ok := schedule.DueDateInPeriod(schedule.RuleFor(def), month, year)
	if !ok {
		return nil, fmt.Errorf("recurring %s period %04d-%02d: %w", def.RecurringID, year, month, apperrors.ErrNotScheduled)
	}

	resolved := &domain.ResolvedOccurrence{
		Key:              domain.NewPeriodKey(def.RecurringID, month, year),
		UserID:           def.UserID,
		Name:             def.Name,
		Kind:             def.Kind,
		Category:         def.Category,
		DueDate:          occ.Date,
		Amount:           def.AmountForInstallment(occ.Index),
		InstallmentIndex: occ.Index,
		IsInstallment:    def.IsInstallment,
		Override:         override,
		Payment:          payment,
	}

	if override != nil {
		switch action := override.Action.(type) {
		case domain.SkipOverride:
			resolved.Status = domain.StatusSkipped
			return resolved, nil
		case domain.AmountChangeOverride:
			resolved.Amount = action.Amount
		default:
			return nil, fmt.Errorf("%w: unknown override action %T", apperrors.ErrInternal, action)
		}
	}

	switch {
	case payment != nil:
		resolved.Status = domain.StatusPaid
		resolved.Amount = payment.AmountPaid
	case occ.Date.Before(schedule.DateOf(asOf)):
		resolved.Status = domain.StatusOverdue
	default:
		resolved.Status = domain.StatusDue
	}
	return resolved, nil
}

// occurrenceResolver implements portssvc.OccurrenceResolverSvc on top of the stores.
type occurrenceResolver struct {
	BaseService
	overrideRepo portsrepo.OverrideReader
	paymentRepo  portsrepo.PaymentReader
}

// NewOccurrenceResolver creates a resolver that loads overrides and payments from the stores.
func NewOccurrenceResolver(overrideRepo portsrepo.OverrideReader, paymentRepo portsrepo.PaymentReader, options ...ServiceOption) portssvc.OccurrenceResolverSvc {
	svc := &occurrenceResolver{overrideRepo: overrideRepo, paymentRepo: paymentRepo}
	svc.apply(options)
	return svc
}

var _ portssvc.OccurrenceResolverSvc = (*occurrenceResolver)(nil)

func (s *occurrenceResolver) ResolveOccurrence(ctx context.Context, def *domain.RecurringDefinition, month, year int, asOf time.Time) (*domain.ResolvedOccurrence, error) {
	key := domain.NewPeriodKey(def.RecurringID, month, year)
	if !key.Valid() {
		return nil, validationError("invalid period %d/%d", month, year)
	}

	override, err := optionalOverride(ctx, s.overrideRepo, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to load override", slog.String("period", key.String()))
		return nil, fmt.Errorf("failed to load override: %w", err)
	}
	payment, err := optionalPayment(ctx, s.paymentRepo, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to load payment", slog.String("period", key.String()))
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	return ResolveOccurrence(def, month, year, override, payment, asOf)
}
