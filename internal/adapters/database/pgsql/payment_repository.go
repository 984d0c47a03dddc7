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

const paymentColumns = `
	payment_id, recurring_id, user_id, period_month, period_year, due_day,
	amount_paid, paid_at, ledger_transaction_id, created_at`

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for occurrence payments.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func scanPayment(row pgx.Row) (models.OccurrencePayment, error) {
	var m models.OccurrencePayment
	err := row.Scan(
		&m.PaymentID,
		&m.RecurringID,
		&m.UserID,
		&m.PeriodMonth,
		&m.PeriodYear,
		&m.DueDay,
		&m.AmountPaid,
		&m.PaidAt,
		&m.LedgerTransactionID,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PgxPaymentRepository) collect(rows pgx.Rows) ([]domain.OccurrencePayment, error) {
	defer rows.Close()
	var ms []models.OccurrencePayment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return mapping.ToDomainPaymentSlice(ms), nil
}

func (r *PgxPaymentRepository) FindPaymentByKey(ctx context.Context, key domain.PeriodKey) (*domain.OccurrencePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM occurrence_payments
		WHERE recurring_id = $1 AND period_year = $2 AND period_month = $3;`
	m, err := scanPayment(r.db(ctx).QueryRow(ctx, query, key.RecurringID, key.Year, key.Month))
	if err != nil {
		return nil, notFound(err, "payment for "+key.String())
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.OccurrencePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM occurrence_payments WHERE payment_id = $1;`
	m, err := scanPayment(r.db(ctx).QueryRow(ctx, query, paymentID))
	if err != nil {
		return nil, notFound(err, "payment "+paymentID)
	}
	p := mapping.ToDomainPayment(m)
	return &p, nil
}

func (r *PgxPaymentRepository) ListPaymentsByRecurring(ctx context.Context, recurringID string) ([]domain.OccurrencePayment, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT `+paymentColumns+` FROM occurrence_payments
		WHERE recurring_id = $1
		ORDER BY period_year, period_month;`, recurringID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of %s: %w", recurringID, err)
	}
	return r.collect(rows)
}

func (r *PgxPaymentRepository) FindPaymentsByRecurringIDs(ctx context.Context, recurringIDs []string) (map[domain.PeriodKey]domain.OccurrencePayment, error) {
	result := make(map[domain.PeriodKey]domain.OccurrencePayment)
	if len(recurringIDs) == 0 {
		return result, nil
	}
	rows, err := r.db(ctx).Query(ctx, `SELECT `+paymentColumns+` FROM occurrence_payments
		WHERE recurring_id = ANY($1::uuid[]);`, recurringIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	payments, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		result[p.Key] = p
	}
	return result, nil
}

// SavePayment reports a lost race on the unique period index as apperrors.ErrConflict.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.OccurrencePayment) error {
	m := mapping.ToModelPayment(payment)
	query := `INSERT INTO occurrence_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.db(ctx).Exec(ctx, query,
		m.PaymentID,
		m.RecurringID,
		m.UserID,
		m.PeriodMonth,
		m.PeriodYear,
		m.DueDay,
		m.AmountPaid,
		m.PaidAt,
		m.LedgerTransactionID,
		m.CreatedAt,
	)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return fmt.Errorf("payment for %s: %w", payment.Key, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}
	return nil
}

func (r *PgxPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM occurrence_payments WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
	}
	return nil
}
