package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// RunInTx runs fn inside a single storage transaction. The context passed to fn
	// carries the transaction; repository calls made with it join the transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
