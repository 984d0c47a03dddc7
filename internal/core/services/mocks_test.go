package services_test

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionManager ---
// Runs fn directly and reports whether it committed.
type MockTxManager struct {
	Committed  int
	RolledBack int
}

func (m *MockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

// --- Mock RecurringRepository ---
type MockRecurringRepository struct {
	mock.Mock
}

func (m *MockRecurringRepository) FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringDefinition), args.Error(1)
}

func (m *MockRecurringRepository) FindRecurringForUpdate(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringDefinition), args.Error(1)
}

func (m *MockRecurringRepository) ListRecurringByUser(ctx context.Context, userID string, limit int, nextToken *string, includeInactive bool) ([]domain.RecurringDefinition, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken, includeInactive)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.RecurringDefinition), next, args.Error(2)
}

func (m *MockRecurringRepository) ListActiveRecurringByUser(ctx context.Context, userID string) ([]domain.RecurringDefinition, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringDefinition), args.Error(1)
}

func (m *MockRecurringRepository) ListActiveRecurring(ctx context.Context) ([]domain.RecurringDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringDefinition), args.Error(1)
}

func (m *MockRecurringRepository) SaveRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockRecurringRepository) UpdateRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

// --- Mock OverrideRepository ---
type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) FindOverride(ctx context.Context, key domain.PeriodKey) (*domain.PeriodOverride, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodOverride), args.Error(1)
}

func (m *MockOverrideRepository) ListOverridesByRecurring(ctx context.Context, recurringID string) ([]domain.PeriodOverride, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodOverride), args.Error(1)
}

func (m *MockOverrideRepository) FindOverridesByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.PeriodOverride, error) {
	args := m.Called(ctx, recurringIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PeriodKey]domain.PeriodOverride), args.Error(1)
}

func (m *MockOverrideRepository) UpsertOverride(ctx context.Context, override domain.PeriodOverride) (*domain.PeriodOverride, error) {
	args := m.Called(ctx, override)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodOverride), args.Error(1)
}

func (m *MockOverrideRepository) DeleteOverride(ctx context.Context, key domain.PeriodKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockOverrideRepository) DeleteOverridesByRecurring(ctx context.Context, recurringID string) (int, error) {
	args := m.Called(ctx, recurringID)
	return args.Int(0), args.Error(1)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByKey(ctx context.Context, key domain.PeriodKey) (*domain.OccurrencePayment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OccurrencePayment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.OccurrencePayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OccurrencePayment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByRecurring(ctx context.Context, recurringID string) ([]domain.OccurrencePayment, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OccurrencePayment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.OccurrencePayment, error) {
	args := m.Called(ctx, recurringIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PeriodKey]domain.OccurrencePayment), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.OccurrencePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// --- Mock LedgerClient ---
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) CreateTransaction(ctx context.Context, req domain.LedgerTransactionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerClient) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}

func (m *MockLedgerClient) UnlinkRecurring(ctx context.Context, userID, recurringID string) (int, error) {
	args := m.Called(ctx, userID, recurringID)
	return args.Int(0), args.Error(1)
}

// --- Mock ReminderPublisher ---
type MockReminderPublisher struct {
	mock.Mock
}

func (m *MockReminderPublisher) PublishReminder(ctx context.Context, reminder domain.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}
