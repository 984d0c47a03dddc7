package mapping

import (
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/models"
)

// ToModelPayment converts a domain OccurrencePayment to a model OccurrencePayment
func ToModelPayment(d domain.OccurrencePayment) models.OccurrencePayment {
	return models.OccurrencePayment{
		PaymentID:           d.PaymentID,
		RecurringID:         d.Key.RecurringID,
		UserID:              d.UserID,
		PeriodMonth:         int32(d.Key.Month),
		PeriodYear:          int32(d.Key.Year),
		DueDay:              int32(d.DueDay),
		AmountPaid:          d.AmountPaid,
		PaidAt:              d.PaidAt,
		LedgerTransactionID: d.LedgerTransactionID,
		CreatedAt:           d.CreatedAt,
	}
}

// ToDomainPayment converts a model OccurrencePayment to a domain OccurrencePayment
func ToDomainPayment(m models.OccurrencePayment) domain.OccurrencePayment {
	return domain.OccurrencePayment{
		PaymentID:           m.PaymentID,
		Key:                 domain.NewPeriodKey(m.RecurringID, int(m.PeriodMonth), int(m.PeriodYear)),
		UserID:              m.UserID,
		DueDay:              int(m.DueDay),
		AmountPaid:          m.AmountPaid,
		PaidAt:              m.PaidAt.UTC(),
		LedgerTransactionID: m.LedgerTransactionID,
		CreatedAt:           m.CreatedAt.UTC(),
	}
}

// ToDomainPaymentSlice converts a slice of model payments to domain payments
func ToDomainPaymentSlice(ms []models.OccurrencePayment) []domain.OccurrencePayment {
	ds := make([]domain.OccurrencePayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}
