package services

import (
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil when no message broker is configured.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portsrepo.ReminderPublisher, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Generation first: the registry and the sweep both generate through it.
	container.Generation = NewGenerationService(repos, options...)
	container.Resolver = NewOccurrenceResolver(repos.OverrideRepo, repos.PaymentRepo, options...)
	container.Recurring = NewRecurringService(repos, container.Generation, options...)
	container.Projection = NewProjectionService(repos, options...)

	concurrency := 1
	if cfg != nil {
		concurrency = cfg.WorkerConcurrency
	}
	container.Sweep = NewSweepService(repos, container.Generation, publisher, concurrency, options...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RecurringSvcFacade    = (*recurringService)(nil)
	_ portssvc.GenerationSvcFacade   = (*generationService)(nil)
	_ portssvc.OccurrenceResolverSvc = (*occurrenceResolver)(nil)
	_ portssvc.ProjectionSvc         = (*projectionService)(nil)
	_ portssvc.SweepSvc              = (*sweepService)(nil)
)
