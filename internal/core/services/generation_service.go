package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// generationService links occurrences to ledger entries.
type generationService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	recurringRepo portsrepo.RecurringRepositoryFacade
	overrideRepo  portsrepo.OverrideReader
	paymentRepo   portsrepo.PaymentRepositoryFacade
	ledger        portsrepo.LedgerClient

	inflight singleflight.Group
}

// NewGenerationService creates the generation service.
func NewGenerationService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.GenerationSvcFacade {
	svc := &generationService{
		txManager:     repos.TxManager,
		recurringRepo: repos.RecurringRepo,
		overrideRepo:  repos.OverrideRepo,
		paymentRepo:   repos.PaymentRepo,
		ledger:        repos.Ledger,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.GenerationSvcFacade = (*generationService)(nil)

func (s *generationService) Generate(ctx context.Context, userID, recurringID string, month, year int) (*domain.GenerationResult, error) {
	key := domain.NewPeriodKey(recurringID, month, year)
	if !key.Valid() {
		return nil, validationError("invalid period %d/%d", month, year)
	}
	logger := s.GetLogger(ctx).With(slog.String("period", key.String()))

	def, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to load recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}

	existing, err := optionalPayment(ctx, s.paymentRepo, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil {
		logger.Debug("Occurrence already generated", slog.String("payment_id", existing.PaymentID))
		return &domain.GenerationResult{Payment: *existing, AlreadyGenerated: true}, nil
	}

	// Inside a caller's transaction the attempt must use that transaction and
	// its outcome is not visible to other callers until it commits.
	if inCallerTx(ctx) {
		return s.generateInTx(ctx, def.UserID, key)
	}

	// Concurrent calls for the same period in this process share one attempt,
	// detached from the cancellation of whichever request started it.
	// Callers that did not run it observe the payment as already generated.
	ran := false
	ch := s.inflight.DoChan(key.String(), func() (any, error) {
		ran = true
		return s.generateInTx(context.WithoutCancel(ctx), def.UserID, key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := *res.Val.(*domain.GenerationResult)
		if !ran {
			result.AlreadyGenerated = true
		}
		return &result, nil
	}
}

type callerTxKey struct{}

// withCallerTx marks ctx as carrying a transaction opened by another service.
func withCallerTx(ctx context.Context) context.Context {
	return context.WithValue(ctx, callerTxKey{}, true)
}

func inCallerTx(ctx context.Context) bool {
	v, _ := ctx.Value(callerTxKey{}).(bool)
	return v
}

func (s *generationService) generateInTx(ctx context.Context, userID string, key domain.PeriodKey) (*domain.GenerationResult, error) {
	var result *domain.GenerationResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		def, err := s.recurringRepo.FindRecurringForUpdate(txCtx, key.RecurringID)
		if err != nil {
			return err
		}
		if err := checkOwner(def, userID); err != nil {
			return err
		}

		// Another writer may have committed between the fast path and the lock.
		existing, err := optionalPayment(txCtx, s.paymentRepo, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &domain.GenerationResult{Payment: *existing, AlreadyGenerated: true}
			return nil
		}

		if def.InstallmentsExhausted() {
			return validationError("installment plan %s is complete", def.RecurringID)
		}
		if !def.IsActive {
			return validationError("recurring definition %s is not active", def.RecurringID)
		}

		override, err := optionalOverride(txCtx, s.overrideRepo, key)
		if err != nil {
			return err
		}
		now := s.Now()
		occ, err := ResolveOccurrence(def, key.Month, key.Year, override, nil, now)
		if err != nil {
			return err
		}
		if occ.Status == domain.StatusSkipped {
			return validationError("period %04d-%02d is skipped", key.Year, key.Month)
		}
		if !occ.Amount.IsPositive() {
			return validationError("occurrence amount must be positive, got %s", occ.Amount)
		}

		ledgerID, err := s.ledger.CreateTransaction(txCtx, domain.LedgerTransactionRequest{
			UserID:      def.UserID,
			RecurringID: def.RecurringID,
			Description: ledgerDescription(def, occ),
			Kind:        def.Kind,
			Amount:      occ.Amount,
			Date:        occ.DueDate,
			Category:    def.Category,
			AccountID:   def.AccountID,
		})
		if err != nil {
			return collaboratorError("ledger create transaction", err)
		}

		payment := domain.OccurrencePayment{
			PaymentID:           uuid.NewString(),
			Key:                 key,
			UserID:              def.UserID,
			DueDay:              occ.DueDate.Day(),
			AmountPaid:          occ.Amount,
			PaidAt:              now,
			LedgerTransactionID: ledgerID,
			CreatedAt:           now,
		}
		if err := s.paymentRepo.SavePayment(txCtx, payment); err != nil {
			return err
		}

		if def.IsInstallment {
			def.AdvanceInstallment()
			def.Touch(userID, now)
			if err := s.recurringRepo.UpdateRecurring(txCtx, *def); err != nil {
				return err
			}
		}

		result = &domain.GenerationResult{Payment: payment}
		return nil
	})

	if errors.Is(err, apperrors.ErrConflict) {
		// Lost the race on the unique period index: the winner's payment is the result.
		existing, ferr := s.paymentRepo.FindPaymentByKey(ctx, key)
		if ferr == nil {
			s.LogInfo(ctx, "Concurrent generation resolved to existing payment", slog.String("period", key.String()))
			return &domain.GenerationResult{Payment: *existing, AlreadyGenerated: true}, nil
		}
		s.LogError(ctx, ferr, "Failed to re-read payment after conflict", slog.String("period", key.String()))
		return nil, err
	}
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to generate occurrence", slog.String("period", key.String()))
		return nil, err
	}

	if !result.AlreadyGenerated {
		s.LogInfo(ctx, "Occurrence generated",
			slog.String("period", key.String()),
			slog.String("payment_id", result.Payment.PaymentID),
			slog.String("ledger_transaction_id", result.Payment.LedgerTransactionID))
	}
	return result, nil
}

func (s *generationService) Undo(ctx context.Context, userID, paymentID string) (*domain.UndoResult, error) {
	var result *domain.UndoResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindPaymentByID(txCtx, paymentID)
		if err != nil {
			return err
		}
		def, err := s.recurringRepo.FindRecurringForUpdate(txCtx, payment.Key.RecurringID)
		if err != nil {
			return err
		}
		if def.UserID != userID {
			return fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}

		if err := s.ledger.DeleteTransaction(txCtx, userID, payment.LedgerTransactionID); err != nil {
			return collaboratorError("ledger delete transaction", err)
		}
		if err := s.paymentRepo.DeletePayment(txCtx, payment.PaymentID); err != nil {
			return err
		}

		result = &domain.UndoResult{PaymentID: payment.PaymentID, LedgerTransactionID: payment.LedgerTransactionID}
		if def.IsInstallment {
			wasActive := def.IsActive
			def.RewindInstallment()
			def.Touch(userID, s.Now())
			if err := s.recurringRepo.UpdateRecurring(txCtx, *def); err != nil {
				return err
			}
			result.Reactivated = !wasActive && def.IsActive
		}
		return nil
	})
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to undo occurrence", slog.String("payment_id", paymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Occurrence undone", slog.String("payment_id", paymentID), slog.Bool("reactivated", result.Reactivated))
	return result, nil
}

func (s *generationService) ListPayments(ctx context.Context, userID, recurringID string) ([]domain.OccurrencePayment, error) {
	if _, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID); err != nil {
		s.logUnexpected(ctx, err, "Failed to load recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}
	payments, err := s.paymentRepo.ListPaymentsByRecurring(ctx, recurringID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("recurring_id", recurringID))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		return []domain.OccurrencePayment{}, nil
	}
	return payments, nil
}

func ledgerDescription(def *domain.RecurringDefinition, occ *domain.ResolvedOccurrence) string {
	if def.IsInstallment {
		return fmt.Sprintf("%s (%d/%d)", def.Name, occ.InstallmentIndex+1, def.TotalInstallments)
	}
	return def.Name
}

func collaboratorError(op string, err error) error {
	if errors.Is(err, apperrors.ErrCollaborator) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrCollaborator, err)
}
