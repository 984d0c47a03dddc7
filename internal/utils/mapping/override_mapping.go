package mapping

import (
	"fmt"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelOverride converts a domain PeriodOverride to a model PeriodOverride
func ToModelOverride(d domain.PeriodOverride) models.PeriodOverride {
	m := models.PeriodOverride{
		OverrideID:     d.OverrideID,
		RecurringID:    d.Key.RecurringID,
		PeriodMonth:    int32(d.Key.Month),
		PeriodYear:     int32(d.Key.Year),
		OverrideType:   string(d.Action.Type()),
		OriginalAmount: d.OriginalAmount,
		Note:           d.Note,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if amount, ok := d.OverrideAmount(); ok {
		m.Amount = decimal.NewNullDecimal(amount)
	}
	return m
}

// ToDomainOverride converts a model PeriodOverride to a domain PeriodOverride.
// It fails when the stored type and amount do not form a valid action.
func ToDomainOverride(m models.PeriodOverride) (domain.PeriodOverride, error) {
	var amount *decimal.Decimal
	if m.Amount.Valid {
		amount = &m.Amount.Decimal
	}
	action, err := domain.NewOverrideAction(domain.OverrideType(m.OverrideType), amount)
	if err != nil {
		return domain.PeriodOverride{}, fmt.Errorf("override %s: %w", m.OverrideID, err)
	}
	return domain.PeriodOverride{
		OverrideID:     m.OverrideID,
		Key:            domain.NewPeriodKey(m.RecurringID, int(m.PeriodMonth), int(m.PeriodYear)),
		Action:         action,
		OriginalAmount: m.OriginalAmount,
		Note:           m.Note,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}, nil
}
