package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock func() time.Time
}

// ServiceOption is a functional option applied to the BaseService of every service.
type ServiceOption func(*BaseService)

// WithClock overrides the time source used for audit fields and payment timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

func (s *BaseService) apply(options []ServiceOption) {
	for _, option := range options {
		option(s)
	}
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// logUnexpected logs err unless it is an expected outcome the caller reports to the client.
func (s *BaseService) logUnexpected(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

// checkOwner hides definitions of other users behind ErrNotFound.
func checkOwner(def *domain.RecurringDefinition, userID string) error {
	if def.UserID != userID || def.IsDeleted() {
		return fmt.Errorf("recurring definition %s: %w", def.RecurringID, apperrors.ErrNotFound)
	}
	return nil
}

// findOwnedRecurring loads a non-deleted definition owned by userID.
func findOwnedRecurring(ctx context.Context, repo portsrepo.RecurringReader, userID, recurringID string) (*domain.RecurringDefinition, error) {
	def, err := repo.FindRecurringByID(ctx, recurringID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(def, userID); err != nil {
		return nil, err
	}
	return def, nil
}

// optionalOverride returns nil when the period has no override.
func optionalOverride(ctx context.Context, repo portsrepo.OverrideReader, key domain.PeriodKey) (*domain.PeriodOverride, error) {
	o, err := repo.FindOverride(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return o, err
}

// optionalPayment returns nil when the period has not been generated.
func optionalPayment(ctx context.Context, repo portsrepo.PaymentReader, key domain.PeriodKey) (*domain.OccurrencePayment, error) {
	p, err := repo.FindPaymentByKey(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}
