package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
)

// PaymentRepository implements portsrepo.PaymentRepositoryFacade.
// paymentKeys plays the role of the unique (recurring, year, month) index.
type PaymentRepository struct {
	store *Store
}

var _ portsrepo.PaymentRepositoryFacade = (*PaymentRepository)(nil)

func (r *PaymentRepository) FindPaymentByKey(ctx context.Context, key domain.PeriodKey) (*domain.OccurrencePayment, error) {
	var (
		p  domain.OccurrencePayment
		ok bool
	)
	r.store.read(ctx, func(st *state) {
		var id string
		if id, ok = st.paymentKeys[key]; ok {
			p = st.payments[id]
		}
	})
	if !ok {
		return nil, fmt.Errorf("payment for %s: %w", key, apperrors.ErrNotFound)
	}
	return &p, nil
}

func (r *PaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.OccurrencePayment, error) {
	var (
		p  domain.OccurrencePayment
		ok bool
	)
	r.store.read(ctx, func(st *state) { p, ok = st.payments[paymentID] })
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return &p, nil
}

func (r *PaymentRepository) ListPaymentsByRecurring(ctx context.Context, recurringID string) ([]domain.OccurrencePayment, error) {
	var out []domain.OccurrencePayment
	r.store.read(ctx, func(st *state) {
		for _, p := range st.payments {
			if p.Key.RecurringID == recurringID {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out, nil
}

func (r *PaymentRepository) FindPaymentsByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.OccurrencePayment, error) {
	wanted := toSet(recurringIDs)
	out := map[domain.PeriodKey]domain.OccurrencePayment{}
	r.store.read(ctx, func(st *state) {
		for _, p := range st.payments {
			if _, ok := wanted[p.Key.RecurringID]; ok {
				out[p.Key] = p
			}
		}
	})
	return out, nil
}

func (r *PaymentRepository) SavePayment(ctx context.Context, payment domain.OccurrencePayment) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.recurring[payment.Key.RecurringID]; !ok {
			return fmt.Errorf("recurring definition %s: %w", payment.Key.RecurringID, apperrors.ErrNotFound)
		}
		if _, taken := st.paymentKeys[payment.Key]; taken {
			return fmt.Errorf("payment for %s: %w", payment.Key, apperrors.ErrConflict)
		}
		st.payments[payment.PaymentID] = payment
		st.paymentKeys[payment.Key] = payment.PaymentID
		return nil
	})
}

func (r *PaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	return r.store.write(ctx, func(st *state) error {
		p, ok := st.payments[paymentID]
		if !ok {
			return fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}
		delete(st.payments, paymentID)
		delete(st.paymentKeys, p.Key)
		return nil
	})
}
