package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/utils/pagination"
)

// RecurringRepository implements portsrepo.RecurringRepositoryFacade.
type RecurringRepository struct {
	store *Store
}

var _ portsrepo.RecurringRepositoryFacade = (*RecurringRepository)(nil)

func (r *RecurringRepository) FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	var (
		def domain.RecurringDefinition
		ok  bool
	)
	r.store.read(ctx, func(st *state) { def, ok = st.recurring[recurringID] })
	if !ok {
		return nil, fmt.Errorf("recurring definition %s: %w", recurringID, apperrors.ErrNotFound)
	}
	return &def, nil
}

// FindRecurringForUpdate needs no extra locking: transactions are serialised.
func (r *RecurringRepository) FindRecurringForUpdate(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	return r.FindRecurringByID(ctx, recurringID)
}

func (r *RecurringRepository) ListRecurringByUser(ctx context.Context, userID string, limit int, nextToken *string, includeInactive bool) ([]domain.RecurringDefinition, *string, error) {
	var defs []domain.RecurringDefinition
	r.store.read(ctx, func(st *state) {
		for _, def := range st.recurring {
			if def.UserID != userID || def.IsDeleted() || (!includeInactive && !def.IsActive) {
				continue
			}
			defs = append(defs, def)
		}
	})
	sortNewestFirst(defs)

	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start := len(defs)
		for i, def := range defs {
			if def.CreatedAt.Before(createdAt) || (def.CreatedAt.Equal(createdAt) && def.RecurringID < id) {
				start = i
				break
			}
		}
		defs = defs[start:]
	}

	var next *string
	if limit > 0 && len(defs) > limit {
		defs = defs[:limit]
		last := defs[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.RecurringID)
		next = &token
	}
	return defs, next, nil
}

func (r *RecurringRepository) ListActiveRecurringByUser(ctx context.Context, userID string) ([]domain.RecurringDefinition, error) {
	return r.listActive(ctx, func(def *domain.RecurringDefinition) bool { return def.UserID == userID }), nil
}

func (r *RecurringRepository) ListActiveRecurring(ctx context.Context) ([]domain.RecurringDefinition, error) {
	return r.listActive(ctx, func(*domain.RecurringDefinition) bool { return true }), nil
}

func (r *RecurringRepository) listActive(ctx context.Context, keep func(*domain.RecurringDefinition) bool) []domain.RecurringDefinition {
	var defs []domain.RecurringDefinition
	r.store.read(ctx, func(st *state) {
		for _, def := range st.recurring {
			if def.IsActive && !def.IsDeleted() && keep(&def) {
				defs = append(defs, def)
			}
		}
	})
	sortNewestFirst(defs)
	return defs
}

func (r *RecurringRepository) SaveRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.recurring[def.RecurringID]; exists {
			return fmt.Errorf("recurring definition %s: %w", def.RecurringID, apperrors.ErrDuplicate)
		}
		st.recurring[def.RecurringID] = def
		return nil
	})
}

func (r *RecurringRepository) UpdateRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.recurring[def.RecurringID]; !exists {
			return fmt.Errorf("recurring definition %s: %w", def.RecurringID, apperrors.ErrNotFound)
		}
		st.recurring[def.RecurringID] = def
		return nil
	})
}

func sortNewestFirst(defs []domain.RecurringDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if !defs[i].CreatedAt.Equal(defs[j].CreatedAt) {
			return defs[i].CreatedAt.After(defs[j].CreatedAt)
		}
		return defs[i].RecurringID > defs[j].RecurringID
	})
}
