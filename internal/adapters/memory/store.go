// Package memory is an in-process storage backend. It implements every
// repository port plus the ledger so the engine runs without Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
)

type txKey struct{}

// state is everything a transaction may roll back.
type state struct {
	recurring   map[string]domain.RecurringDefinition
	overrides   map[domain.PeriodKey]domain.PeriodOverride
	payments    map[string]domain.OccurrencePayment
	paymentKeys map[domain.PeriodKey]string
	ledger      map[string]domain.LedgerTransaction
}

func newState() state {
	return state{
		recurring:   map[string]domain.RecurringDefinition{},
		overrides:   map[domain.PeriodKey]domain.PeriodOverride{},
		payments:    map[string]domain.OccurrencePayment{},
		paymentKeys: map[domain.PeriodKey]string{},
		ledger:      map[string]domain.LedgerTransaction{},
	}
}

func (st state) clone() state {
	c := newState()
	for k, v := range st.recurring {
		c.recurring[k] = v
	}
	for k, v := range st.overrides {
		c.overrides[k] = v
	}
	for k, v := range st.payments {
		c.payments[k] = v
	}
	for k, v := range st.paymentKeys {
		c.paymentKeys[k] = v
	}
	for k, v := range st.ledger {
		c.ledger[k] = v
	}
	return c
}

// Store holds all data in maps. A transaction works on a private copy of the
// committed state that replaces it on commit, so readers outside the
// transaction only ever see committed data. Transactions and writes outside a
// transaction are serialised by txMu.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state

	// accounts known to the ledger; when empty any account reference is accepted.
	accountsMu sync.RWMutex
	accounts   map[string]struct{}
}

// txState is the working copy of one transaction.
type txState struct {
	owner *Store
	mu    sync.Mutex
	data  state
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState(), accounts: map[string]struct{}{}}
}

// Repositories wires the store into every repository port.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecurringRepo: &RecurringRepository{store: s},
		OverrideRepo:  &OverrideRepository{store: s},
		PaymentRepo:   &PaymentRepository{store: s},
		Ledger:        &Ledger{store: s},
		TxManager:     s,
	}
}

func (s *Store) txFrom(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey{}).(*txState)
	if tx == nil || tx.owner != s {
		return nil
	}
	return tx
}

func (s *Store) inTx(ctx context.Context) bool {
	return s.txFrom(ctx) != nil
}

// RunInTx implements portsrepo.TransactionManager. Nested calls join the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &txState{owner: s, data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

// read runs fn on the transaction's working copy, or on the committed state
// under the read lock.
func (s *Store) read(ctx context.Context, fn func(st *state)) {
	if tx := s.txFrom(ctx); tx != nil {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		fn(&tx.data)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// write runs fn on the transaction's working copy, or directly on the committed
// state serialised with transactions.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if tx := s.txFrom(ctx); tx != nil {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		return fn(&tx.data)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}
