package pgsql

import (
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository port to the pool. All of them
// join the transaction opened by the returned TxManager.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecurringRepo: newPgxRecurringRepository(dbPool),
		OverrideRepo:  newPgxOverrideRepository(dbPool),
		PaymentRepo:   newPgxPaymentRepository(dbPool),
		Ledger:        newPgxLedgerClient(dbPool),
		TxManager:     &TxManager{BaseRepository: BaseRepository{Pool: dbPool}},
	}
}
