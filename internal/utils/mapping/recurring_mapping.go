package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelRecurring converts a domain RecurringDefinition to a model RecurringDefinition
func ToModelRecurring(d domain.RecurringDefinition) models.RecurringDefinition {
	m := models.RecurringDefinition{
		RecurringID:        d.RecurringID,
		UserID:             d.UserID,
		Name:               d.Name,
		Kind:               string(d.Kind),
		Category:           d.Category,
		Amount:             d.Amount,
		AccountID:          nullString(d.AccountID),
		Frequency:          string(d.Frequency),
		StartDate:          d.StartDate,
		EndDate:            nullTime(d.EndDate),
		IsInstallment:      d.IsInstallment,
		TotalInstallments:  int32(d.TotalInstallments),
		CurrentInstallment: int32(d.CurrentInstallment),
		IsActive:           d.IsActive,
		NotifyDaysBefore:   int32(d.NotifyDaysBefore),
		AutoGenerate:       d.AutoGenerate,
		DeletedAt:          nullTime(d.DeletedAt),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
	if d.AnchorDay != nil {
		m.AnchorDay = sql.NullInt32{Int32: int32(*d.AnchorDay), Valid: true}
	}
	if d.InstallmentTotalAmount != nil {
		m.InstallmentTotalAmount = decimal.NewNullDecimal(*d.InstallmentTotalAmount)
	}
	return m
}

// ToDomainRecurring converts a model RecurringDefinition to a domain RecurringDefinition
func ToDomainRecurring(m models.RecurringDefinition) domain.RecurringDefinition {
	d := domain.RecurringDefinition{
		RecurringID:        m.RecurringID,
		UserID:             m.UserID,
		Name:               m.Name,
		Kind:               domain.RecurringKind(m.Kind),
		Category:           m.Category,
		Amount:             m.Amount,
		AccountID:          stringPtr(m.AccountID),
		Frequency:          domain.Frequency(m.Frequency),
		StartDate:          m.StartDate.UTC(),
		EndDate:            timePtr(m.EndDate),
		IsInstallment:      m.IsInstallment,
		TotalInstallments:  int(m.TotalInstallments),
		CurrentInstallment: int(m.CurrentInstallment),
		IsActive:           m.IsActive,
		NotifyDaysBefore:   int(m.NotifyDaysBefore),
		AutoGenerate:       m.AutoGenerate,
		DeletedAt:          timePtr(m.DeletedAt),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
	if m.AnchorDay.Valid {
		day := int(m.AnchorDay.Int32)
		d.AnchorDay = &day
	}
	if m.InstallmentTotalAmount.Valid {
		total := m.InstallmentTotalAmount.Decimal
		d.InstallmentTotalAmount = &total
	}
	return d
}

// ToDomainRecurringSlice converts a slice of model definitions to domain definitions
func ToDomainRecurringSlice(ms []models.RecurringDefinition) []domain.RecurringDefinition {
	ds := make([]domain.RecurringDefinition, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRecurring(m)
	}
	return ds
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
