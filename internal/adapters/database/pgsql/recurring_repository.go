package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/models"
	"github.com/SscSPs/mma_recurring/internal/utils/mapping"
	"github.com/SscSPs/mma_recurring/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recurringColumns = `
	recurring_id, user_id, name, kind, category, amount, account_id, frequency, anchor_day,
	start_date, end_date, is_installment, total_installments, current_installment,
	installment_total_amount, is_active, notify_days_before, auto_generate, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxRecurringRepository struct {
	BaseRepository
}

// newPgxRecurringRepository creates a new repository for recurring definitions.
func newPgxRecurringRepository(pool *pgxpool.Pool) portsrepo.RecurringRepositoryFacade {
	return &PgxRecurringRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RecurringRepositoryFacade = (*PgxRecurringRepository)(nil)

func scanRecurring(row pgx.Row) (models.RecurringDefinition, error) {
	var m models.RecurringDefinition
	err := row.Scan(
		&m.RecurringID,
		&m.UserID,
		&m.Name,
		&m.Kind,
		&m.Category,
		&m.Amount,
		&m.AccountID,
		&m.Frequency,
		&m.AnchorDay,
		&m.StartDate,
		&m.EndDate,
		&m.IsInstallment,
		&m.TotalInstallments,
		&m.CurrentInstallment,
		&m.InstallmentTotalAmount,
		&m.IsActive,
		&m.NotifyDaysBefore,
		&m.AutoGenerate,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxRecurringRepository) collect(rows pgx.Rows) ([]domain.RecurringDefinition, error) {
	defer rows.Close()
	var ms []models.RecurringDefinition
	for rows.Next() {
		m, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring definition: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring definitions: %w", err)
	}
	return mapping.ToDomainRecurringSlice(ms), nil
}

func (r *PgxRecurringRepository) findOne(ctx context.Context, query, recurringID string) (*domain.RecurringDefinition, error) {
	m, err := scanRecurring(r.db(ctx).QueryRow(ctx, query, recurringID))
	if err != nil {
		return nil, notFound(err, "recurring definition "+recurringID)
	}
	d := mapping.ToDomainRecurring(m)
	return &d, nil
}

// FindRecurringByID returns soft-deleted definitions too; callers decide visibility.
func (r *PgxRecurringRepository) FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	return r.findOne(ctx, `SELECT `+recurringColumns+` FROM recurring_definitions WHERE recurring_id = $1;`, recurringID)
}

// FindRecurringForUpdate locks the row until the surrounding transaction ends.
func (r *PgxRecurringRepository) FindRecurringForUpdate(ctx context.Context, recurringID string) (*domain.RecurringDefinition, error) {
	return r.findOne(ctx, `SELECT `+recurringColumns+` FROM recurring_definitions WHERE recurring_id = $1 FOR UPDATE;`, recurringID)
}

// ListRecurringByUser pages newest first using a (created_at, recurring_id) cursor.
func (r *PgxRecurringRepository) ListRecurringByUser(ctx context.Context, userID string, limit int, nextToken *string, includeInactive bool) ([]domain.RecurringDefinition, *string, error) {
	var (
		afterCreated *time.Time
		afterID      *string
	)
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		afterCreated, afterID = &createdAt, &id
	}

	query := `SELECT ` + recurringColumns + `
		FROM recurring_definitions
		WHERE user_id = $1
		  AND deleted_at IS NULL
		  AND ($2 OR is_active)
		  AND ($3::timestamptz IS NULL OR (created_at, recurring_id) < ($3, $4::uuid))
		ORDER BY created_at DESC, recurring_id DESC
		LIMIT $5;`

	// Fetch one extra row to know whether another page exists.
	rows, err := r.db(ctx).Query(ctx, query, userID, includeInactive, afterCreated, afterID, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list recurring definitions for user %s: %w", userID, err)
	}
	defs, err := r.collect(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(defs) > limit {
		defs = defs[:limit]
		last := defs[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.RecurringID)
		next = &token
	}
	return defs, next, nil
}

func (r *PgxRecurringRepository) ListActiveRecurringByUser(ctx context.Context, userID string) ([]domain.RecurringDefinition, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+recurringColumns+`
		FROM recurring_definitions
		WHERE user_id = $1 AND is_active AND deleted_at IS NULL
		ORDER BY created_at DESC, recurring_id DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recurring definitions for user %s: %w", userID, err)
	}
	return r.collect(rows)
}

func (r *PgxRecurringRepository) ListActiveRecurring(ctx context.Context) ([]domain.RecurringDefinition, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+recurringColumns+`
		FROM recurring_definitions
		WHERE is_active AND deleted_at IS NULL
		ORDER BY created_at DESC, recurring_id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active recurring definitions: %w", err)
	}
	return r.collect(rows)
}

func (r *PgxRecurringRepository) SaveRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	m := mapping.ToModelRecurring(def)
	query := `INSERT INTO recurring_definitions (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);`
	_, err := r.db(ctx).Exec(ctx, query,
		m.RecurringID,
		m.UserID,
		m.Name,
		m.Kind,
		m.Category,
		m.Amount,
		m.AccountID,
		m.Frequency,
		m.AnchorDay,
		m.StartDate,
		m.EndDate,
		m.IsInstallment,
		m.TotalInstallments,
		m.CurrentInstallment,
		m.InstallmentTotalAmount,
		m.IsActive,
		m.NotifyDaysBefore,
		m.AutoGenerate,
		m.DeletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return fmt.Errorf("recurring definition %s: %w", def.RecurringID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert recurring definition %s: %w", def.RecurringID, err)
	}
	return nil
}

// UpdateRecurring rewrites every mutable column. Identity and creation audit fields never change.
func (r *PgxRecurringRepository) UpdateRecurring(ctx context.Context, def domain.RecurringDefinition) error {
	m := mapping.ToModelRecurring(def)
	query := `
		UPDATE recurring_definitions
		SET name = $2, category = $3, amount = $4, account_id = $5, anchor_day = $6, end_date = $7,
		    current_installment = $8, installment_total_amount = $9, is_active = $10,
		    notify_days_before = $11, auto_generate = $12, deleted_at = $13,
		    last_updated_at = $14, last_updated_by = $15
		WHERE recurring_id = $1;`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.RecurringID,
		m.Name,
		m.Category,
		m.Amount,
		m.AccountID,
		m.AnchorDay,
		m.EndDate,
		m.CurrentInstallment,
		m.InstallmentTotalAmount,
		m.IsActive,
		m.NotifyDaysBefore,
		m.AutoGenerate,
		m.DeletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring definition %s: %w", def.RecurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurring definition %s: %w", def.RecurringID, apperrors.ErrNotFound)
	}
	return nil
}
