package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type GenerationServiceTestSuite struct {
	suite.Suite
	txManager     *MockTxManager
	recurringRepo *MockRecurringRepository
	overrideRepo  *MockOverrideRepository
	paymentRepo   *MockPaymentRepository
	ledger        *MockLedgerClient
	service       portssvc.GenerationSvcFacade
	now           time.Time
	ctx           context.Context
}

func (suite *GenerationServiceTestSuite) SetupTest() {
	suite.txManager = &MockTxManager{}
	suite.recurringRepo = new(MockRecurringRepository)
	suite.overrideRepo = new(MockOverrideRepository)
	suite.paymentRepo = new(MockPaymentRepository)
	suite.ledger = new(MockLedgerClient)
	suite.now = time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()

	suite.service = services.NewGenerationService(portsrepo.RepositoryProvider{
		RecurringRepo: suite.recurringRepo,
		OverrideRepo:  suite.overrideRepo,
		PaymentRepo:   suite.paymentRepo,
		Ledger:        suite.ledger,
		TxManager:     suite.txManager,
	}, services.WithClock(func() time.Time { return suite.now }))
}

func (suite *GenerationServiceTestSuite) definition() *domain.RecurringDefinition {
	def := monthlyDefinition(5, "1000.00")
	def.Category = "Housing"
	return def
}

func (suite *GenerationServiceTestSuite) notFound() error {
	return apperrors.ErrNotFound
}

// --- Test Cases ---

func (suite *GenerationServiceTestSuite) TestGenerate_ExistingPaymentReturned() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)
	existing := &domain.OccurrencePayment{PaymentID: "pay-1", Key: key, LedgerTransactionID: "ledger-1"}

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(existing, nil).Once()

	result, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.Require().NoError(err)
	suite.True(result.AlreadyGenerated)
	suite.Equal("pay-1", result.Payment.PaymentID)
	suite.ledger.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
	suite.Zero(suite.txManager.Committed)
}

func (suite *GenerationServiceTestSuite) TestGenerate_Success() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(suite.definition(), nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()
	suite.overrideRepo.On("FindOverride", mock.Anything, key).Return(nil, suite.notFound()).Once()
	suite.ledger.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req domain.LedgerTransactionRequest) bool {
		return req.UserID == "user-1" &&
			req.RecurringID == def.RecurringID &&
			req.Amount.Equal(decimal.NewFromInt(1000)) &&
			req.Date.Equal(day(2025, time.March, 5)) &&
			req.Kind == domain.KindExpense &&
			req.Category == "Housing"
	})).Return("ledger-1", nil).Once()
	suite.paymentRepo.On("SavePayment", mock.Anything, mock.MatchedBy(func(p domain.OccurrencePayment) bool {
		return p.Key == key && p.LedgerTransactionID == "ledger-1" && p.DueDay == 5
	})).Return(nil).Once()

	result, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.Require().NoError(err)
	suite.False(result.AlreadyGenerated)
	suite.Equal("ledger-1", result.Payment.LedgerTransactionID)
	suite.True(result.Payment.AmountPaid.Equal(decimal.NewFromInt(1000)))
	suite.Equal(suite.now, result.Payment.PaidAt)
	suite.Equal(1, suite.txManager.Committed)
	suite.recurringRepo.AssertNotCalled(suite.T(), "UpdateRecurring", mock.Anything, mock.Anything)

	suite.recurringRepo.AssertExpectations(suite.T())
	suite.paymentRepo.AssertExpectations(suite.T())
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *GenerationServiceTestSuite) TestGenerate_CancelledCallerDoesNotAbortAttempt() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)
	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()
	savedCtxErr := make(chan error, 1)

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(suite.definition(), nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()
	suite.overrideRepo.On("FindOverride", mock.Anything, key).Return(nil, suite.notFound()).Once()
	suite.ledger.On("CreateTransaction", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return("ledger-1", nil).Once()
	suite.paymentRepo.On("SavePayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedCtxErr <- args.Get(0).(context.Context).Err() }).
		Return(nil).Once()

	// The caller may see either its own cancellation or the result.
	_, _ = suite.service.Generate(ctx, "user-1", def.RecurringID, 3, 2025)

	select {
	case err := <-savedCtxErr:
		suite.NoError(err)
	case <-time.After(2 * time.Second):
		suite.Fail("payment was never saved")
	}
}

func (suite *GenerationServiceTestSuite) TestGenerate_LedgerFailureWritesNothing() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(suite.definition(), nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()
	suite.overrideRepo.On("FindOverride", mock.Anything, key).Return(nil, suite.notFound()).Once()
	suite.ledger.On("CreateTransaction", mock.Anything, mock.Anything).Return("", errors.New("ledger unavailable")).Once()

	result, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrCollaborator)
	suite.paymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
	suite.Equal(1, suite.txManager.RolledBack)
}

func (suite *GenerationServiceTestSuite) TestGenerate_LostRaceReturnsWinner() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)
	winner := &domain.OccurrencePayment{PaymentID: "winner", Key: key, LedgerTransactionID: "ledger-w"}

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(suite.definition(), nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(winner, nil).Once()
	suite.overrideRepo.On("FindOverride", mock.Anything, key).Return(nil, suite.notFound()).Once()
	suite.ledger.On("CreateTransaction", mock.Anything, mock.Anything).Return("ledger-loser", nil).Once()
	suite.paymentRepo.On("SavePayment", mock.Anything, mock.Anything).Return(apperrors.ErrConflict).Once()

	result, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.Require().NoError(err)
	suite.True(result.AlreadyGenerated)
	suite.Equal("winner", result.Payment.PaymentID)
	suite.Equal(1, suite.txManager.RolledBack, "the loser's ledger entry is rolled back with its transaction")
}

func (suite *GenerationServiceTestSuite) TestGenerate_SkippedPeriodRejected() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(suite.definition(), nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()
	suite.overrideRepo.On("FindOverride", mock.Anything, key).Return(&domain.PeriodOverride{Key: key, Action: domain.SkipOverride{}}, nil).Once()

	_, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ledger.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *GenerationServiceTestSuite) TestGenerate_InactiveRejected() {
	def := suite.definition()
	key := domain.NewPeriodKey(def.RecurringID, 3, 2025)
	paused := suite.definition()
	paused.IsActive = false

	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(paused, nil).Once()
	suite.paymentRepo.On("FindPaymentByKey", mock.Anything, key).Return(nil, suite.notFound()).Twice()

	_, err := suite.service.Generate(suite.ctx, "user-1", def.RecurringID, 3, 2025)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ledger.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything)
}

func (suite *GenerationServiceTestSuite) TestGenerate_OtherUsersDefinitionIsNotFound() {
	def := suite.definition()
	suite.recurringRepo.On("FindRecurringByID", mock.Anything, def.RecurringID).Return(def, nil).Once()

	_, err := suite.service.Generate(suite.ctx, "intruder", def.RecurringID, 3, 2025)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.paymentRepo.AssertNotCalled(suite.T(), "FindPaymentByKey", mock.Anything, mock.Anything)
}

func (suite *GenerationServiceTestSuite) TestGenerate_InvalidPeriod() {
	_, err := suite.service.Generate(suite.ctx, "user-1", "rec-1", 13, 2025)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *GenerationServiceTestSuite) TestUndo_ReactivatesCompletedPlan() {
	total := decimal.NewFromInt(300)
	plan := suite.definition()
	plan.IsInstallment = true
	plan.TotalInstallments = 3
	plan.CurrentInstallment = 3
	plan.InstallmentTotalAmount = &total
	plan.IsActive = false
	payment := &domain.OccurrencePayment{PaymentID: "pay-3", Key: domain.NewPeriodKey(plan.RecurringID, 3, 2025), LedgerTransactionID: "ledger-3"}

	suite.paymentRepo.On("FindPaymentByID", mock.Anything, "pay-3").Return(payment, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, plan.RecurringID).Return(plan, nil).Once()
	suite.ledger.On("DeleteTransaction", mock.Anything, "user-1", "ledger-3").Return(nil).Once()
	suite.paymentRepo.On("DeletePayment", mock.Anything, "pay-3").Return(nil).Once()
	suite.recurringRepo.On("UpdateRecurring", mock.Anything, mock.MatchedBy(func(d domain.RecurringDefinition) bool {
		return d.CurrentInstallment == 2 && d.IsActive
	})).Return(nil).Once()

	result, err := suite.service.Undo(suite.ctx, "user-1", "pay-3")

	suite.Require().NoError(err)
	suite.True(result.Reactivated)
	suite.Equal("ledger-3", result.LedgerTransactionID)
	suite.recurringRepo.AssertExpectations(suite.T())
	suite.paymentRepo.AssertExpectations(suite.T())
}

func (suite *GenerationServiceTestSuite) TestUndo_LedgerFailureKeepsPayment() {
	def := suite.definition()
	payment := &domain.OccurrencePayment{PaymentID: "pay-1", Key: domain.NewPeriodKey(def.RecurringID, 3, 2025), LedgerTransactionID: "ledger-1"}

	suite.paymentRepo.On("FindPaymentByID", mock.Anything, "pay-1").Return(payment, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(def, nil).Once()
	suite.ledger.On("DeleteTransaction", mock.Anything, "user-1", "ledger-1").Return(errors.New("timeout")).Once()

	_, err := suite.service.Undo(suite.ctx, "user-1", "pay-1")

	suite.ErrorIs(err, apperrors.ErrCollaborator)
	suite.paymentRepo.AssertNotCalled(suite.T(), "DeletePayment", mock.Anything, mock.Anything)
}

func (suite *GenerationServiceTestSuite) TestUndo_OtherUsersPaymentIsNotFound() {
	def := suite.definition()
	payment := &domain.OccurrencePayment{PaymentID: "pay-1", Key: domain.NewPeriodKey(def.RecurringID, 3, 2025)}

	suite.paymentRepo.On("FindPaymentByID", mock.Anything, "pay-1").Return(payment, nil).Once()
	suite.recurringRepo.On("FindRecurringForUpdate", mock.Anything, def.RecurringID).Return(def, nil).Once()

	_, err := suite.service.Undo(suite.ctx, "intruder", "pay-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.ledger.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything)
}

// TestGenerationServiceTestSuite runs the entire test suite
func TestGenerationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GenerationServiceTestSuite))
}
