package repositories

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// RecurringReader defines read operations for recurring definitions
type RecurringReader interface {
	// FindRecurringByID retrieves a definition by id, soft deleted ones included.
	FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error)

	// ListRecurringByUser retrieves a page of non-deleted definitions of a user, newest first.
	// It returns the definitions, a token for the next page, and an error.
	ListRecurringByUser(ctx context.Context, userID string, limit int, nextToken *string, includeInactive bool) ([]domain.RecurringDefinition, *string, error)

	// ListActiveRecurringByUser retrieves every active, non-deleted definition of a user.
	ListActiveRecurringByUser(ctx context.Context, userID string) ([]domain.RecurringDefinition, error)

	// ListActiveRecurring retrieves every active, non-deleted definition. Used by the worker.
	ListActiveRecurring(ctx context.Context) ([]domain.RecurringDefinition, error)
}

// RecurringWriter defines write operations for recurring definitions
type RecurringWriter interface {
	// SaveRecurring persists a new definition.
	SaveRecurring(ctx context.Context, def domain.RecurringDefinition) error

	// UpdateRecurring overwrites the mutable fields of an existing definition.
	UpdateRecurring(ctx context.Context, def domain.RecurringDefinition) error

	// FindRecurringForUpdate reads a definition and locks it until the surrounding
	// transaction ends. It must be called with a transactional context.
	FindRecurringForUpdate(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error)
}

// RecurringRepositoryFacade combines all recurring definition repository interfaces
type RecurringRepositoryFacade interface {
	RecurringReader
	RecurringWriter
}
