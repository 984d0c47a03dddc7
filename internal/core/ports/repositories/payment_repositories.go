package repositories

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// PaymentReader defines read operations for occurrence payments
type PaymentReader interface {
	// FindPaymentByKey returns the payment of a period or apperrors.ErrNotFound.
	FindPaymentByKey(ctx context.Context, key domain.PeriodKey) (*domain.OccurrencePayment, error)

	// FindPaymentByID returns a payment or apperrors.ErrNotFound.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.OccurrencePayment, error)

	// ListPaymentsByRecurring returns the payments of one definition ordered by period.
	ListPaymentsByRecurring(ctx context.Context, recurringID string) ([]domain.OccurrencePayment, error)

	// FindPaymentsByRecurringIDs bulk loads payments keyed by period.
	FindPaymentsByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.OccurrencePayment, error)
}

// PaymentWriter defines write operations for occurrence payments
type PaymentWriter interface {
	// SavePayment inserts a payment. A payment already stored for the same period
	// yields apperrors.ErrConflict.
	SavePayment(ctx context.Context, payment domain.OccurrencePayment) error

	// DeletePayment removes a payment or returns apperrors.ErrNotFound.
	DeletePayment(ctx context.Context, paymentID string) error
}

// PaymentRepositoryFacade combines all payment repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
