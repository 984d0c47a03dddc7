package services

import (
	"context"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/dto"
)

// RecurringReaderSvc defines read operations for recurring definitions
type RecurringReaderSvc interface {
	// GetRecurring retrieves a definition owned by userID.
	GetRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error)

	// ListRecurring retrieves a page of the user's definitions and the token of the next page.
	ListRecurring(ctx context.Context, userID string, params dto.ListRecurringParams) ([]domain.RecurringDefinition, *string, error)
}

// RecurringWriterSvc defines write operations for recurring definitions
type RecurringWriterSvc interface {
	// CreateRecurring validates and persists a new definition.
	CreateRecurring(ctx context.Context, userID string, req dto.CreateRecurringRequest) (*domain.RecurringDefinition, error)

	// CreateInstallmentPlan creates a monthly installment definition, optionally
	// generating every installment right away.
	CreateInstallmentPlan(ctx context.Context, userID string, req dto.CreateInstallmentPlanRequest) (*domain.InstallmentPlan, error)

	// EditRecurring changes the template. Past payments are untouched.
	EditRecurring(ctx context.Context, userID, recurringID string, req dto.UpdateRecurringRequest) (*domain.RecurringDefinition, error)

	// PauseRecurring stops projection and generation until resumed.
	PauseRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error)

	// ResumeRecurring reactivates a paused definition.
	ResumeRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error)

	// SoftDeleteRecurring deactivates a definition, unlinks its ledger entries and drops its overrides.
	SoftDeleteRecurring(ctx context.Context, userID, recurringID string) (*domain.SoftDeleteResult, error)
}

// OverrideSvc defines operations on period overrides
type OverrideSvc interface {
	// SetOverride creates or replaces the override of one period.
	SetOverride(ctx context.Context, userID, recurringID string, month, year int, req dto.SetOverrideRequest) (*domain.PeriodOverride, error)

	// RemoveOverride deletes the override of one period.
	RemoveOverride(ctx context.Context, userID, recurringID string, month, year int) error

	// ListOverrides returns every override of a definition.
	ListOverrides(ctx context.Context, userID, recurringID string) ([]domain.PeriodOverride, error)
}

// RecurringSvcFacade combines all registry service interfaces
// This is a facade for clients that need access to all operations
type RecurringSvcFacade interface {
	RecurringReaderSvc
	RecurringWriterSvc
	OverrideSvc
}
