package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerClient writes ledger entries to the ledger tables of the same
// database, so they commit or roll back with the payment that links them.
type PgxLedgerClient struct {
	BaseRepository
}

// newPgxLedgerClient creates a ledger client backed by ledger_transactions.
func newPgxLedgerClient(pool *pgxpool.Pool) portsrepo.LedgerClient {
	return &PgxLedgerClient{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerClient = (*PgxLedgerClient)(nil)

// CreateTransaction fails with apperrors.ErrCollaborator when the account is unknown.
func (l *PgxLedgerClient) CreateTransaction(ctx context.Context, req domain.LedgerTransactionRequest) (string, error) {
	m := mapping.ToModelLedgerTransaction(uuid.NewString(), req)
	query := `
		INSERT INTO ledger_transactions (transaction_id, user_id, recurring_id, description, kind, amount, txn_date, category, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW());`
	_, err := l.db(ctx).Exec(ctx, query,
		m.TransactionID,
		m.UserID,
		m.RecurringID,
		m.Description,
		m.Kind,
		m.Amount,
		m.TxnDate,
		m.Category,
		m.AccountID,
	)
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return "", fmt.Errorf("%w: unknown ledger account %s", apperrors.ErrCollaborator, m.AccountID.String)
		}
		return "", fmt.Errorf("%w: failed to insert ledger transaction: %v", apperrors.ErrCollaborator, err)
	}
	return m.TransactionID, nil
}

// DeleteTransaction is idempotent: deleting a missing entry succeeds.
func (l *PgxLedgerClient) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	_, err := l.db(ctx).Exec(ctx, `DELETE FROM ledger_transactions WHERE transaction_id = $1 AND user_id = $2;`, transactionID, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete ledger transaction %s: %v", apperrors.ErrCollaborator, transactionID, err)
	}
	return nil
}

func (l *PgxLedgerClient) UnlinkRecurring(ctx context.Context, userID, recurringID string) (int, error) {
	tag, err := l.db(ctx).Exec(ctx, `UPDATE ledger_transactions SET recurring_id = NULL
		WHERE user_id = $1 AND recurring_id = $2;`, userID, recurringID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to unlink ledger transactions of %s: %v", apperrors.ErrCollaborator, recurringID, err)
	}
	return int(tag.RowsAffected()), nil
}
