package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccurrencePayment records that a period has been turned into a ledger entry.
// There is at most one per PeriodKey.
type OccurrencePayment struct {
	PaymentID           string          `json:"paymentID"`
	Key                 PeriodKey       `json:"key"`
	UserID              string          `json:"userID"`
	DueDay              int             `json:"dueDay"`
	AmountPaid          decimal.Decimal `json:"amountPaid"`
	PaidAt              time.Time       `json:"paidAt"`
	LedgerTransactionID string          `json:"ledgerTransactionID"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// GenerationResult is returned by Generate. AlreadyGenerated is true when the
// payment existed before the call.
type GenerationResult struct {
	Payment          OccurrencePayment `json:"payment"`
	AlreadyGenerated bool              `json:"alreadyGenerated"`
}

// UndoResult describes what Undo removed.
type UndoResult struct {
	PaymentID           string `json:"paymentID"`
	LedgerTransactionID string `json:"ledgerTransactionID"`
	Reactivated         bool   `json:"reactivated"`
}

// SoftDeleteResult describes what SoftDelete touched.
type SoftDeleteResult struct {
	RecurringID        string `json:"recurringID"`
	UnlinkedLedgerTxns int    `json:"unlinkedLedgerTxns"`
	DeletedOverrides   int    `json:"deletedOverrides"`
}
