package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
)

// OverrideRepository implements portsrepo.OverrideRepositoryFacade.
type OverrideRepository struct {
	store *Store
}

var _ portsrepo.OverrideRepositoryFacade = (*OverrideRepository)(nil)

func (r *OverrideRepository) FindOverride(ctx context.Context, key domain.PeriodKey) (*domain.PeriodOverride, error) {
	var (
		o  domain.PeriodOverride
		ok bool
	)
	r.store.read(ctx, func(st *state) { o, ok = st.overrides[key] })
	if !ok {
		return nil, fmt.Errorf("override %s: %w", key, apperrors.ErrNotFound)
	}
	return &o, nil
}

func (r *OverrideRepository) ListOverridesByRecurring(ctx context.Context, recurringID string) ([]domain.PeriodOverride, error) {
	var out []domain.PeriodOverride
	r.store.read(ctx, func(st *state) {
		for key, o := range st.overrides {
			if key.RecurringID == recurringID {
				out = append(out, o)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out, nil
}

func (r *OverrideRepository) FindOverridesByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.PeriodOverride, error) {
	wanted := toSet(recurringIDs)
	out := map[domain.PeriodKey]domain.PeriodOverride{}
	r.store.read(ctx, func(st *state) {
		for key, o := range st.overrides {
			if _, ok := wanted[key.RecurringID]; ok {
				out[key] = o
			}
		}
	})
	return out, nil
}

func (r *OverrideRepository) UpsertOverride(ctx context.Context, override domain.PeriodOverride) (*domain.PeriodOverride, error) {
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.recurring[override.Key.RecurringID]; !ok {
			return fmt.Errorf("recurring definition %s: %w", override.Key.RecurringID, apperrors.ErrNotFound)
		}
		if existing, ok := st.overrides[override.Key]; ok {
			override.OverrideID = existing.OverrideID
			override.CreatedAt = existing.CreatedAt
			override.CreatedBy = existing.CreatedBy
		}
		st.overrides[override.Key] = override
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *OverrideRepository) DeleteOverride(ctx context.Context, key domain.PeriodKey) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.overrides[key]; !ok {
			return fmt.Errorf("override %s: %w", key, apperrors.ErrNotFound)
		}
		delete(st.overrides, key)
		return nil
	})
}

func (r *OverrideRepository) DeleteOverridesByRecurring(ctx context.Context, recurringID string) (int, error) {
	deleted := 0
	err := r.store.write(ctx, func(st *state) error {
		for key := range st.overrides {
			if key.RecurringID == recurringID {
				delete(st.overrides, key)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func keyLess(a, b domain.PeriodKey) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
