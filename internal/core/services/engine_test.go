package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/mma_recurring/internal/adapters/memory"
	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/services"
	"github.com/SscSPs/mma_recurring/internal/dto"
	"github.com/SscSPs/mma_recurring/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type engine struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
	ctx   context.Context
}

func newEngine(t *testing.T, now time.Time, publisher portsrepo.ReminderPublisher) *engine {
	t.Helper()
	store := memory.New()
	cfg := &config.Config{WorkerConcurrency: 4}
	return &engine{
		store: store,
		svc:   services.NewServiceContainer(cfg, store.Repositories(), publisher, services.WithClock(func() time.Time { return now })),
		ctx:   context.Background(),
	}
}

func (e *engine) createMonthly(t *testing.T, anchor int, amount string, edits ...func(*dto.CreateRecurringRequest)) *domain.RecurringDefinition {
	t.Helper()
	req := dto.CreateRecurringRequest{
		Name:      "Rent",
		Kind:      domain.KindExpense,
		Category:  "Housing",
		Amount:    decimal.RequireFromString(amount),
		Frequency: domain.Monthly,
		AnchorDay: &anchor,
		StartDate: "2025-01-01",
	}
	for _, edit := range edits {
		edit(&req)
	}
	def, err := e.svc.Recurring.CreateRecurring(e.ctx, "user-1", req)
	require.NoError(t, err)
	return def
}

func ledgerTotal(txns []domain.LedgerTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total
}

func TestEngine_GenerateIsIdempotent(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	def := e.createMonthly(t, 5, "1000.00")

	first, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
	require.NoError(t, err)
	assert.False(t, first.AlreadyGenerated)
	assert.Equal(t, 5, first.Payment.DueDay)

	second, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
	require.NoError(t, err)
	assert.True(t, second.AlreadyGenerated)
	assert.Equal(t, first.Payment.PaymentID, second.Payment.PaymentID)

	txns := e.store.LedgerTransactions("user-1")
	require.Len(t, txns, 1)
	assert.Equal(t, first.Payment.LedgerTransactionID, txns[0].TransactionID)
	assert.Equal(t, "Rent", txns[0].Description)
	assert.Equal(t, day(2025, time.March, 5), txns[0].Date)
}

func TestEngine_ConcurrentGenerateCreatesOneLedgerEntry(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	def := e.createMonthly(t, 5, "1000.00")

	const callers = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
		ids   = map[string]struct{}{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !res.AlreadyGenerated {
				fresh++
			}
			ids[res.Payment.PaymentID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fresh)
	assert.Len(t, ids, 1)
	assert.Len(t, e.store.LedgerTransactions("user-1"), 1)
}

func TestEngine_AmountOverrideFlowsToLedger(t *testing.T) {
	e := newEngine(t, day(2025, time.February, 1), nil)
	def := e.createMonthly(t, 1, "100.00")
	amount := decimal.RequireFromString("150.00")

	override, err := e.svc.Recurring.SetOverride(e.ctx, "user-1", def.RecurringID, 3, 2025, dto.SetOverrideRequest{
		Type:   domain.OverrideAmountChange,
		Amount: &amount,
		Note:   "price increase",
	})
	require.NoError(t, err)
	assert.True(t, override.OriginalAmount.Equal(decimal.NewFromInt(100)))

	march, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
	require.NoError(t, err)
	assert.True(t, march.Payment.AmountPaid.Equal(amount))

	april, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 4, 2025)
	require.NoError(t, err)
	assert.True(t, april.Payment.AmountPaid.Equal(decimal.NewFromInt(100)))

	assert.True(t, ledgerTotal(e.store.LedgerTransactions("user-1")).Equal(decimal.NewFromInt(250)))
}

func TestEngine_SkipBlocksGenerationAndProjectsSkipped(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 1), nil)
	def := e.createMonthly(t, 5, "1000.00")

	_, err := e.svc.Recurring.SetOverride(e.ctx, "user-1", def.RecurringID, 3, 2025, dto.SetOverrideRequest{Type: domain.OverrideSkip})
	require.NoError(t, err)

	_, err = e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, e.store.LedgerTransactions("user-1"))

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 10, day(2025, time.March, 1))
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, domain.StatusSkipped, occs[0].Status)

	// Removing the override makes the period generatable again.
	require.NoError(t, e.svc.Recurring.RemoveOverride(e.ctx, "user-1", def.RecurringID, 3, 2025))
	res, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 3, 2025)
	require.NoError(t, err)
	assert.False(t, res.AlreadyGenerated)
}

func TestEngine_OverrideOutsideScheduleRejected(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 1), nil)
	def := e.createMonthly(t, 5, "1000.00")

	_, err := e.svc.Recurring.SetOverride(e.ctx, "user-1", def.RecurringID, 12, 2024, dto.SetOverrideRequest{Type: domain.OverrideSkip})
	assert.ErrorIs(t, err, apperrors.ErrNotScheduled)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.svc.Recurring.SetOverride(e.ctx, "user-1", def.RecurringID, 3, 2025, dto.SetOverrideRequest{Type: domain.OverrideAmountChange})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "amount change without amount")
}

func TestEngine_InstallmentCounterTerminatesPlan(t *testing.T) {
	e := newEngine(t, day(2025, time.April, 20), nil)
	def := e.createMonthly(t, 10, "100.00", func(req *dto.CreateRecurringRequest) {
		req.StartDate = "2025-01-10"
		req.IsInstallment = true
		req.TotalInstallments = 3
	})

	for month := 1; month <= 3; month++ {
		_, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, month, 2025)
		require.NoError(t, err, "installment %d", month)
	}

	done, err := e.svc.Recurring.GetRecurring(e.ctx, "user-1", def.RecurringID)
	require.NoError(t, err)
	assert.Equal(t, 3, done.CurrentInstallment)
	assert.False(t, done.IsActive)

	_, err = e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 4, 2025)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Len(t, e.store.LedgerTransactions("user-1"), 3)

	_, err = e.svc.Recurring.ResumeRecurring(e.ctx, "user-1", def.RecurringID)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "a completed plan cannot be resumed")
}

func TestEngine_UndoReopensPeriodAndPlan(t *testing.T) {
	e := newEngine(t, day(2025, time.April, 20), nil)
	def := e.createMonthly(t, 10, "100.00", func(req *dto.CreateRecurringRequest) {
		req.StartDate = "2025-01-10"
		req.IsInstallment = true
		req.TotalInstallments = 2
	})

	_, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 1, 2025)
	require.NoError(t, err)
	last, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 2, 2025)
	require.NoError(t, err)

	undo, err := e.svc.Generation.Undo(e.ctx, "user-1", last.Payment.PaymentID)
	require.NoError(t, err)
	assert.True(t, undo.Reactivated)
	assert.Len(t, e.store.LedgerTransactions("user-1"), 1)

	reopened, err := e.svc.Recurring.GetRecurring(e.ctx, "user-1", def.RecurringID)
	require.NoError(t, err)
	assert.True(t, reopened.IsActive)
	assert.Equal(t, 1, reopened.CurrentInstallment)

	again, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 2, 2025)
	require.NoError(t, err)
	assert.False(t, again.AlreadyGenerated)
	assert.NotEqual(t, last.Payment.PaymentID, again.Payment.PaymentID)

	_, err = e.svc.Generation.Undo(e.ctx, "user-2", again.Payment.PaymentID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEngine_InstallmentPlanGenerateNow(t *testing.T) {
	e := newEngine(t, day(2025, time.January, 5), nil)

	plan, err := e.svc.Recurring.CreateInstallmentPlan(e.ctx, "user-1", dto.CreateInstallmentPlanRequest{
		Name:             "Laptop",
		TotalAmount:      decimal.NewFromInt(1200),
		InstallmentCount: 12,
		StartDate:        "2025-01-05",
		GenerateNow:      true,
	})
	require.NoError(t, err)

	require.Len(t, plan.Generated, 12)
	for i, res := range plan.Generated {
		assert.True(t, res.Payment.AmountPaid.Equal(decimal.NewFromInt(100)), "installment %d", i+1)
	}
	assert.Equal(t, 12, plan.Definition.CurrentInstallment)
	assert.False(t, plan.Definition.IsActive)
	assert.Equal(t, domain.KindExpense, plan.Definition.Kind)

	txns := e.store.LedgerTransactions("user-1")
	require.Len(t, txns, 12)
	assert.Equal(t, "Laptop (1/12)", txns[0].Description)
	assert.Equal(t, "Laptop (12/12)", txns[11].Description)
	assert.Equal(t, day(2025, time.December, 5), txns[11].Date)
	assert.True(t, ledgerTotal(txns).Equal(decimal.NewFromInt(1200)))
}

func TestEngine_InstallmentPlanGeneratedOneByOne(t *testing.T) {
	e := newEngine(t, day(2025, time.January, 5), nil)

	plan, err := e.svc.Recurring.CreateInstallmentPlan(e.ctx, "user-1", dto.CreateInstallmentPlanRequest{
		Name:             "Laptop",
		TotalAmount:      decimal.NewFromInt(1200),
		InstallmentCount: 12,
		StartDate:        "2025-01-05",
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Generated)
	assert.Empty(t, e.store.LedgerTransactions("user-1"))
	id := plan.Definition.RecurringID

	for month := 1; month <= 12; month++ {
		res, err := e.svc.Generation.Generate(e.ctx, "user-1", id, month, 2025)
		require.NoError(t, err, "month %d", month)
		assert.True(t, res.Payment.AmountPaid.Equal(decimal.NewFromInt(100)), "month %d", month)
	}

	def, err := e.svc.Recurring.GetRecurring(e.ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, 12, def.CurrentInstallment)
	assert.False(t, def.IsActive)

	txns := e.store.LedgerTransactions("user-1")
	require.Len(t, txns, 12)
	assert.True(t, ledgerTotal(txns).Equal(decimal.NewFromInt(1200)))

	_, err = e.svc.Generation.Generate(e.ctx, "user-1", id, 1, 2026)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Len(t, e.store.LedgerTransactions("user-1"), 12)
}

func TestEngine_InstallmentPlanGenerateNowFailureWritesNothing(t *testing.T) {
	e := newEngine(t, day(2025, time.January, 5), nil)
	e.store.RegisterLedgerAccount("acc-1")
	unknown := "acc-unknown"
	req := dto.CreateInstallmentPlanRequest{
		Name:             "Laptop",
		TotalAmount:      decimal.NewFromInt(1200),
		InstallmentCount: 12,
		StartDate:        "2025-01-05",
		AccountID:        &unknown,
		GenerateNow:      true,
	}

	_, err := e.svc.Recurring.CreateInstallmentPlan(e.ctx, "user-1", req)
	require.ErrorIs(t, err, apperrors.ErrCollaborator)

	defs, _, err := e.svc.Recurring.ListRecurring(e.ctx, "user-1", dto.ListRecurringParams{Limit: 10, IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, defs)
	assert.Empty(t, e.store.LedgerTransactions("user-1"))

	// Retrying with a valid account creates exactly one plan.
	known := "acc-1"
	req.AccountID = &known
	plan, err := e.svc.Recurring.CreateInstallmentPlan(e.ctx, "user-1", req)
	require.NoError(t, err)
	assert.Len(t, plan.Generated, 12)

	defs, _, err = e.svc.Recurring.ListRecurring(e.ctx, "user-1", dto.ListRecurringParams{Limit: 10, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, defs, 1)
	assert.Len(t, e.store.LedgerTransactions("user-1"), 12)
}

func TestEngine_InstallmentPlanRemainderOnLastInstallment(t *testing.T) {
	e := newEngine(t, day(2025, time.January, 5), nil)

	plan, err := e.svc.Recurring.CreateInstallmentPlan(e.ctx, "user-1", dto.CreateInstallmentPlanRequest{
		Name:             "Phone",
		TotalAmount:      decimal.NewFromInt(100),
		InstallmentCount: 3,
		StartDate:        "2025-01-31",
		GenerateNow:      true,
	})
	require.NoError(t, err)
	require.Len(t, plan.Generated, 3)

	assert.Equal(t, "33.33", plan.Generated[0].Payment.AmountPaid.StringFixed(2))
	assert.Equal(t, "33.34", plan.Generated[2].Payment.AmountPaid.StringFixed(2))
	assert.Equal(t, 28, plan.Generated[1].Payment.DueDay, "anchor 31 clamps to the end of February")
	assert.True(t, ledgerTotal(e.store.LedgerTransactions("user-1")).Equal(decimal.NewFromInt(100)))
}

func TestEngine_UpcomingCrossesMonthBoundary(t *testing.T) {
	asOf := day(2025, time.January, 20)
	e := newEngine(t, asOf, nil)
	def := e.createMonthly(t, 15, "1000.00")

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 30, asOf)
	require.NoError(t, err)
	require.Len(t, occs, 2)

	assert.Equal(t, day(2025, time.January, 15), occs[0].DueDate)
	assert.Equal(t, domain.StatusOverdue, occs[0].Status)
	assert.Equal(t, day(2025, time.February, 15), occs[1].DueDate)
	assert.Equal(t, domain.StatusDue, occs[1].Status)
	assert.Equal(t, def.RecurringID, occs[1].Key.RecurringID)

	// Horizon ending before the February date keeps only January.
	short, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 10, asOf)
	require.NoError(t, err)
	require.Len(t, short, 1)

	_, err = e.svc.Projection.Upcoming(e.ctx, "user-1", -1, asOf)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEngine_UpcomingJanuaryFebruaryThenPaid(t *testing.T) {
	asOf := day(2025, time.January, 20)
	e := newEngine(t, asOf, nil)
	def := e.createMonthly(t, 5, "1000.00")

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 40, asOf)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, day(2025, time.January, 5), occs[0].DueDate)
	assert.Equal(t, domain.StatusOverdue, occs[0].Status)
	assert.Equal(t, day(2025, time.February, 5), occs[1].DueDate)
	assert.Equal(t, domain.StatusDue, occs[1].Status)

	_, err = e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 1, 2025)
	require.NoError(t, err)

	occs, err = e.svc.Projection.Upcoming(e.ctx, "user-1", 40, asOf)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, domain.StatusPaid, occs[0].Status)
	assert.Equal(t, domain.StatusDue, occs[1].Status)
}

func TestEngine_OverdueListsUnpaidPastPeriods(t *testing.T) {
	asOf := day(2025, time.March, 10)
	e := newEngine(t, asOf, nil)
	def := e.createMonthly(t, 5, "1000.00")
	paused := e.createMonthly(t, 5, "50.00")

	_, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 2, 2025)
	require.NoError(t, err)
	_, err = e.svc.Recurring.PauseRecurring(e.ctx, "user-1", paused.RecurringID)
	require.NoError(t, err)

	occs, err := e.svc.Projection.Overdue(e.ctx, "user-1", asOf)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, 1, occs[0].Key.Month)
	assert.Equal(t, 3, occs[1].Key.Month)
	for _, occ := range occs {
		assert.Equal(t, def.RecurringID, occ.Key.RecurringID)
		assert.Equal(t, domain.StatusOverdue, occ.Status)
	}

	_, err = e.svc.Generation.Generate(e.ctx, "user-1", paused.RecurringID, 1, 2025)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "paused definitions cannot generate")
}

func TestEngine_SoftDeleteUnlinksLedgerAndDropsOverrides(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 1), nil)
	def := e.createMonthly(t, 5, "1000.00")

	for month := 1; month <= 2; month++ {
		_, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, month, 2025)
		require.NoError(t, err)
	}
	_, err := e.svc.Recurring.SetOverride(e.ctx, "user-1", def.RecurringID, 3, 2025, dto.SetOverrideRequest{Type: domain.OverrideSkip})
	require.NoError(t, err)

	res, err := e.svc.Recurring.SoftDeleteRecurring(e.ctx, "user-1", def.RecurringID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UnlinkedLedgerTxns)
	assert.Equal(t, 1, res.DeletedOverrides)

	txns := e.store.LedgerTransactions("user-1")
	require.Len(t, txns, 2, "ledger entries survive deletion")
	for _, txn := range txns {
		assert.Nil(t, txn.RecurringID)
	}

	_, err = e.svc.Recurring.GetRecurring(e.ctx, "user-1", def.RecurringID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.svc.Recurring.SoftDeleteRecurring(e.ctx, "user-1", def.RecurringID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 60, day(2025, time.March, 1))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestEngine_LedgerFailureLeavesNoPayment(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	e.store.RegisterLedgerAccount("acc-1")
	unknown := "acc-missing"
	def := e.createMonthly(t, 5, "100.00", func(req *dto.CreateRecurringRequest) {
		req.AccountID = &unknown
		req.IsInstallment = true
		req.TotalInstallments = 2
	})

	_, err := e.svc.Generation.Generate(e.ctx, "user-1", def.RecurringID, 1, 2025)
	assert.ErrorIs(t, err, apperrors.ErrCollaborator)

	payments, err := e.svc.Generation.ListPayments(e.ctx, "user-1", def.RecurringID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	unchanged, err := e.svc.Recurring.GetRecurring(e.ctx, "user-1", def.RecurringID)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.CurrentInstallment)
	assert.True(t, unchanged.IsActive)
}

func TestEngine_OtherUsersCannotReachDefinition(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	def := e.createMonthly(t, 5, "100.00")

	_, err := e.svc.Recurring.GetRecurring(e.ctx, "user-2", def.RecurringID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.svc.Generation.Generate(e.ctx, "user-2", def.RecurringID, 1, 2025)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = e.svc.Recurring.PauseRecurring(e.ctx, "user-2", def.RecurringID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-2", 30, day(2025, time.March, 1))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestEngine_EditRecurring(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	def := e.createMonthly(t, 5, "100.00")

	name := "Apartment rent"
	anchor := 20
	updated, err := e.svc.Recurring.EditRecurring(e.ctx, "user-1", def.RecurringID, dto.UpdateRecurringRequest{
		Name:      &name,
		AnchorDay: &anchor,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	occs, err := e.svc.Projection.Upcoming(e.ctx, "user-1", 5, day(2025, time.March, 18))
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, day(2025, time.March, 20), occs[0].DueDate)

	badEnd := "2024-12-31"
	_, err = e.svc.Recurring.EditRecurring(e.ctx, "user-1", def.RecurringID, dto.UpdateRecurringRequest{EndDate: &badEnd})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEngine_CreateRecurringValidation(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	ctx := e.ctx

	cases := map[string]dto.CreateRecurringRequest{
		"missing anchor": {
			Name: "Rent", Kind: domain.KindExpense, Amount: decimal.NewFromInt(1),
			Frequency: domain.Monthly, StartDate: "2025-01-01",
		},
		"zero amount": {
			Name: "Gym", Kind: domain.KindExpense, Frequency: domain.Weekly, StartDate: "2025-01-01",
		},
		"anchor on weekly": {
			Name: "Gym", Kind: domain.KindExpense, Amount: decimal.NewFromInt(1),
			Frequency: domain.Weekly, AnchorDay: new(int), StartDate: "2025-01-01",
		},
		"bad date": {
			Name: "Gym", Kind: domain.KindExpense, Amount: decimal.NewFromInt(1),
			Frequency: domain.Weekly, StartDate: "01/01/2025",
		},
		"unknown frequency": {
			Name: "Gym", Kind: domain.KindExpense, Amount: decimal.NewFromInt(1),
			Frequency: "HOURLY", StartDate: "2025-01-01",
		},
		"installment count without plan": {
			Name: "Gym", Kind: domain.KindExpense, Amount: decimal.NewFromInt(1),
			Frequency: domain.Weekly, StartDate: "2025-01-01", TotalInstallments: 3,
		},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.svc.Recurring.CreateRecurring(ctx, "user-1", req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestEngine_ListRecurringPaginates(t *testing.T) {
	e := newEngine(t, day(2025, time.March, 20), nil)
	for i := 0; i < 3; i++ {
		e.createMonthly(t, 5, "10.00")
	}

	page, next, err := e.svc.Recurring.ListRecurring(e.ctx, "user-1", dto.ListRecurringParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	require.NotNil(t, next)

	rest, next, err := e.svc.Recurring.ListRecurring(e.ctx, "user-1", dto.ListRecurringParams{Limit: 2, NextToken: next})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Nil(t, next)

	_, _, err = e.svc.Recurring.ListRecurring(e.ctx, "user-1", dto.ListRecurringParams{Limit: 500})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSweep_GenerateDue(t *testing.T) {
	asOf := day(2025, time.March, 10)
	e := newEngine(t, asOf, nil)
	auto := e.createMonthly(t, 5, "100.00", func(req *dto.CreateRecurringRequest) { req.AutoGenerate = true })
	e.createMonthly(t, 5, "100.00")
	_, err := e.svc.Recurring.SetOverride(e.ctx, "user-1", auto.RecurringID, 2, 2025, dto.SetOverrideRequest{Type: domain.OverrideSkip})
	require.NoError(t, err)

	report, err := e.svc.Sweep.GenerateDue(e.ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, portssvc.SweepReport{Definitions: 1, Processed: 2, Skipped: 1}, report)

	payments, err := e.svc.Generation.ListPayments(e.ctx, "user-1", auto.RecurringID)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	again, err := e.svc.Sweep.GenerateDue(e.ctx, asOf)
	require.NoError(t, err)
	assert.Zero(t, again.Processed, "a second run generates nothing")
	assert.Len(t, e.store.LedgerTransactions("user-1"), 2)
}

func TestSweep_SendReminders(t *testing.T) {
	asOf := day(2025, time.March, 12)
	publisher := new(MockReminderPublisher)
	e := newEngine(t, asOf, publisher)
	def := e.createMonthly(t, 15, "100.00", func(req *dto.CreateRecurringRequest) { req.NotifyDaysBefore = 3 })
	paid := e.createMonthly(t, 15, "20.00", func(req *dto.CreateRecurringRequest) { req.NotifyDaysBefore = 3 })
	e.createMonthly(t, 15, "30.00")

	_, err := e.svc.Generation.Generate(e.ctx, "user-1", paid.RecurringID, 3, 2025)
	require.NoError(t, err)

	publisher.On("PublishReminder", mock.Anything, mock.MatchedBy(func(r domain.Reminder) bool {
		return r.RecurringID == def.RecurringID &&
			r.Event == domain.ReminderEventDueSoon &&
			r.DueDate.Equal(day(2025, time.March, 15)) &&
			r.DaysBefore == 3 &&
			r.Amount.Equal(decimal.NewFromInt(100))
	})).Return(nil).Once()

	report, err := e.svc.Sweep.SendReminders(e.ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, portssvc.SweepReport{Definitions: 2, Processed: 1, Skipped: 1}, report)
	publisher.AssertExpectations(t)

	quiet, err := e.svc.Sweep.SendReminders(e.ctx, day(2025, time.March, 11))
	require.NoError(t, err)
	assert.Zero(t, quiet.Processed)
	publisher.AssertNumberOfCalls(t, "PublishReminder", 1)
}
