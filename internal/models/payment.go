package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccurrencePayment is a row of occurrence_payments.
type OccurrencePayment struct {
	PaymentID           string          `json:"paymentID"`
	RecurringID         string          `json:"recurringID"`
	UserID              string          `json:"userID"`
	PeriodMonth         int32           `json:"periodMonth"`
	PeriodYear          int32           `json:"periodYear"`
	DueDay              int32           `json:"dueDay"`
	AmountPaid          decimal.Decimal `json:"amountPaid"`
	PaidAt              time.Time       `json:"paidAt"`
	LedgerTransactionID string          `json:"ledgerTransactionID"`
	CreatedAt           time.Time       `json:"createdAt"`
}
