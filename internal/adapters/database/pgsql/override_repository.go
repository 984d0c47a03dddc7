package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/models"
	"github.com/SscSPs/mma_recurring/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const overrideColumns = `
	override_id, recurring_id, period_month, period_year, override_type, amount,
	original_amount, note, created_at, created_by, last_updated_at, last_updated_by`

type PgxOverrideRepository struct {
	BaseRepository
}

// newPgxOverrideRepository creates a new repository for period overrides.
func newPgxOverrideRepository(pool *pgxpool.Pool) portsrepo.OverrideRepositoryFacade {
	return &PgxOverrideRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OverrideRepositoryFacade = (*PgxOverrideRepository)(nil)

func scanOverride(row pgx.Row) (domain.PeriodOverride, error) {
	var m models.PeriodOverride
	err := row.Scan(
		&m.OverrideID,
		&m.RecurringID,
		&m.PeriodMonth,
		&m.PeriodYear,
		&m.OverrideType,
		&m.Amount,
		&m.OriginalAmount,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.PeriodOverride{}, err
	}
	return mapping.ToDomainOverride(m)
}

func (r *PgxOverrideRepository) collect(rows pgx.Rows) ([]domain.PeriodOverride, error) {
	defer rows.Close()
	var overrides []domain.PeriodOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overrides: %w", err)
	}
	return overrides, nil
}

func (r *PgxOverrideRepository) FindOverride(ctx context.Context, key domain.PeriodKey) (*domain.PeriodOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM recurring_overrides
		WHERE recurring_id = $1 AND period_year = $2 AND period_month = $3;`
	o, err := scanOverride(r.db(ctx).QueryRow(ctx, query, key.RecurringID, key.Year, key.Month))
	if err != nil {
		return nil, notFound(err, "override "+key.String())
	}
	return &o, nil
}

func (r *PgxOverrideRepository) ListOverridesByRecurring(ctx context.Context, recurringID string) ([]domain.PeriodOverride, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+overrideColumns+` FROM recurring_overrides
		WHERE recurring_id = $1
		ORDER BY period_year, period_month;`, recurringID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides of %s: %w", recurringID, err)
	}
	return r.collect(rows)
}

func (r *PgxOverrideRepository) FindOverridesByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.PeriodOverride, error) {
	result := make(map[domain.PeriodKey]domain.PeriodOverride)
	if len(recurringIDs) == 0 {
		return result, nil
	}
	rows, err := r.db(ctx).Query(ctx, `SELECT `+overrideColumns+` FROM recurring_overrides
		WHERE recurring_id = ANY($1::uuid[]);`, recurringIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	overrides, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		result[o.Key] = o
	}
	return result, nil
}

// UpsertOverride keeps the id and creation fields of an existing override for the period.
func (r *PgxOverrideRepository) UpsertOverride(ctx context.Context, override domain.PeriodOverride) (*domain.PeriodOverride, error) {
	m := mapping.ToModelOverride(override)
	query := `
		INSERT INTO recurring_overrides (` + overrideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (recurring_id, period_year, period_month) DO UPDATE
		SET override_type = EXCLUDED.override_type,
		    amount = EXCLUDED.amount,
		    original_amount = EXCLUDED.original_amount,
		    note = EXCLUDED.note,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + overrideColumns + `;`
	saved, err := scanOverride(r.db(ctx).QueryRow(ctx, query,
		m.OverrideID,
		m.RecurringID,
		m.PeriodMonth,
		m.PeriodYear,
		m.OverrideType,
		m.Amount,
		m.OriginalAmount,
		m.Note,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	))
	if err != nil {
		if isPgError(err, foreignKeyViolation) {
			return nil, fmt.Errorf("recurring definition %s: %w", m.RecurringID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to upsert override %s: %w", override.Key, err)
	}
	return &saved, nil
}

func (r *PgxOverrideRepository) DeleteOverride(ctx context.Context, key domain.PeriodKey) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM recurring_overrides
		WHERE recurring_id = $1 AND period_year = $2 AND period_month = $3;`, key.RecurringID, key.Year, key.Month)
	if err != nil {
		return fmt.Errorf("failed to delete override %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("override %s: %w", key, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxOverrideRepository) DeleteOverridesByRecurring(ctx context.Context, recurringID string) (int, error) {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM recurring_overrides WHERE recurring_id = $1;`, recurringID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete overrides of %s: %w", recurringID, err)
	}
	return int(tag.RowsAffected()), nil
}
