package services

import (
	"context"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
)

// OccurrenceResolverSvc computes the state of a single period.
type OccurrenceResolverSvc interface {
	// ResolveOccurrence applies the period's override and payment to the definition's
	// schedule. It returns apperrors.ErrValidation when the period has no occurrence.
	ResolveOccurrence(ctx context.Context, def *domain.RecurringDefinition, month, year int, asOf time.Time) (*domain.ResolvedOccurrence, error)
}

// GeneratorSvc turns occurrences into ledger entries.
type GeneratorSvc interface {
	// Generate creates the ledger entry of a period at most once. A period that was
	// already generated returns the existing payment with AlreadyGenerated set.
	Generate(ctx context.Context, userID, recurringID string, month, year int) (*domain.GenerationResult, error)

	// Undo removes a generated occurrence and its ledger entry.
	Undo(ctx context.Context, userID, paymentID string) (*domain.UndoResult, error)
}

// PaymentReaderSvc defines read operations for generated occurrences
type PaymentReaderSvc interface {
	// ListPayments returns the generated occurrences of a definition.
	ListPayments(ctx context.Context, userID, recurringID string) ([]domain.OccurrencePayment, error)
}

// GenerationSvcFacade combines generation and payment reads
type GenerationSvcFacade interface {
	GeneratorSvc
	PaymentReaderSvc
}

// ProjectionSvc answers read-only "what is coming / what is late" questions.
type ProjectionSvc interface {
	// Upcoming lists the occurrences from the period containing asOf until asOf+horizonDays.
	Upcoming(ctx context.Context, userID string, horizonDays int, asOf time.Time) ([]domain.ResolvedOccurrence, error)

	// Overdue lists every occurrence due before asOf that is neither paid nor skipped.
	Overdue(ctx context.Context, userID string, asOf time.Time) ([]domain.ResolvedOccurrence, error)
}

// SweepReport summarises one run of a background job.
type SweepReport struct {
	Definitions int
	Processed   int
	Skipped     int
	Failed      int
}

// SweepSvc holds the jobs run by the worker.
type SweepSvc interface {
	// GenerateDue generates every due or overdue occurrence of auto-generating definitions.
	GenerateDue(ctx context.Context, asOf time.Time) (SweepReport, error)

	// SendReminders publishes a reminder for occurrences due within a definition's notice window.
	SendReminders(ctx context.Context, asOf time.Time) (SweepReport, error)
}
