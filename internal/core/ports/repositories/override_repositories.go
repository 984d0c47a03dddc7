package repositories

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// OverrideReader defines read operations for period overrides
type OverrideReader interface {
	// FindOverride returns the override of a period or apperrors.ErrNotFound.
	FindOverride(ctx context.Context, key domain.PeriodKey) (*domain.PeriodOverride, error)

	// ListOverridesByRecurring returns the overrides of one definition ordered by period.
	ListOverridesByRecurring(ctx context.Context, recurringID string) ([]domain.PeriodOverride, error)

	// FindOverridesByRecurringIDs bulk loads overrides keyed by period.
	FindOverridesByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.PeriodOverride, error)
}

// OverrideWriter defines write operations for period overrides
type OverrideWriter interface {
	// UpsertOverride creates the override of a period or replaces the existing one.
	// The returned override carries the id that is stored.
	UpsertOverride(ctx context.Context, override domain.PeriodOverride) (*domain.PeriodOverride, error)

	// DeleteOverride removes the override of a period or returns apperrors.ErrNotFound.
	DeleteOverride(ctx context.Context, key domain.PeriodKey) error

	// DeleteOverridesByRecurring removes every override of a definition and returns how many.
	DeleteOverridesByRecurring(ctx context.Context, recurringID string) (int, error)
}

// OverrideRepositoryFacade combines all override repository interfaces
type OverrideRepositoryFacade interface {
	OverrideReader
	OverrideWriter
}
