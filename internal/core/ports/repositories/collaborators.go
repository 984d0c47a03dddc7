package repositories

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// LedgerClient is the transaction ledger the engine writes generated occurrences to.
// Implementations called with a transactional context must join that transaction.
type LedgerClient interface {
	// CreateTransaction records an entry and returns its ledger id.
	CreateTransaction(ctx context.Context, req domain.LedgerTransactionRequest) (string, error)

	// DeleteTransaction removes an entry. A missing entry is not an error.
	DeleteTransaction(ctx context.Context, userID, transactionID string) error

	// UnlinkRecurring clears the recurring reference of every entry of a definition
	// and returns how many entries were touched.
	UnlinkRecurring(ctx context.Context, userID, recurringID string) (int, error)
}

// ReminderPublisher delivers due-soon reminders to the notification collaborator.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, reminder domain.Reminder) error
}
