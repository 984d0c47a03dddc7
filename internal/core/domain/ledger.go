package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransactionRequest is what the engine asks the ledger to record.
type LedgerTransactionRequest struct {
	UserID      string
	RecurringID string
	Description string
	Kind        RecurringKind
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	AccountID   *string
}

// LedgerTransaction is the ledger-side record of a generated occurrence.
type LedgerTransaction struct {
	TransactionID string          `json:"transactionID"`
	UserID        string          `json:"userID"`
	RecurringID   *string         `json:"recurringID"` // nil once unlinked
	Description   string          `json:"description"`
	Kind          RecurringKind   `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	AccountID     *string         `json:"accountID"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Reminder is the message published for an occurrence that is due soon.
type Reminder struct {
	Event       string          `json:"event"`
	UserID      string          `json:"userID"`
	RecurringID string          `json:"recurringID"`
	Name        string          `json:"name"`
	Kind        RecurringKind   `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"dueDate"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	DaysBefore  int             `json:"daysBefore"`
}

// ReminderEventDueSoon is the event name of due-soon reminders.
const ReminderEventDueSoon = "recurring.occurrence.due_soon"
