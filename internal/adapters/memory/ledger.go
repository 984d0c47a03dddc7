package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// Ledger is an in-memory portsrepo.LedgerClient sharing the store's transactions.
type Ledger struct {
	store *Store
}

var _ portsrepo.LedgerClient = (*Ledger)(nil)

// RegisterLedgerAccount makes accountID a valid account reference. Once any
// account is registered, unknown references are rejected.
func (s *Store) RegisterLedgerAccount(accountID string) {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	s.accounts[accountID] = struct{}{}
}

// knownAccount reports whether accountID may be referenced by a ledger entry.
func (s *Store) knownAccount(accountID string) bool {
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()
	if len(s.accounts) == 0 {
		return true
	}
	_, ok := s.accounts[accountID]
	return ok
}

// LedgerTransactions returns the ledger entries of a user ordered by date.
func (s *Store) LedgerTransactions(userID string) []domain.LedgerTransaction {
	var out []domain.LedgerTransaction
	s.read(context.Background(), func(st *state) {
		for _, txn := range st.ledger {
			if txn.UserID == userID {
				out = append(out, txn)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	return out
}

func (l *Ledger) CreateTransaction(ctx context.Context, req domain.LedgerTransactionRequest) (string, error) {
	id := uuid.NewString()
	err := l.store.write(ctx, func(st *state) error {
		if req.AccountID != nil && !l.store.knownAccount(*req.AccountID) {
			return fmt.Errorf("%w: unknown ledger account %s", apperrors.ErrCollaborator, *req.AccountID)
		}
		recurringID := req.RecurringID
		st.ledger[id] = domain.LedgerTransaction{
			TransactionID: id,
			UserID:        req.UserID,
			RecurringID:   &recurringID,
			Description:   req.Description,
			Kind:          req.Kind,
			Amount:        req.Amount,
			Date:          req.Date,
			Category:      req.Category,
			AccountID:     req.AccountID,
			CreatedAt:     time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return l.store.write(ctx, func(st *state) error {
		if txn, ok := st.ledger[transactionID]; ok && txn.UserID == userID {
			delete(st.ledger, transactionID)
		}
		return nil
	})
}

func (l *Ledger) UnlinkRecurring(ctx context.Context, userID, recurringID string) (int, error) {
	unlinked := 0
	err := l.store.write(ctx, func(st *state) error {
		for id, txn := range st.ledger {
			if txn.UserID == userID && txn.RecurringID != nil && *txn.RecurringID == recurringID {
				txn.RecurringID = nil
				st.ledger[id] = txn
				unlinked++
			}
		}
		return nil
	})
	return unlinked, err
}
