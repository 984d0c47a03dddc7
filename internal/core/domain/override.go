package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PeriodKey identifies one occurrence period of one definition.
// It is comparable and used directly as a map key.
type PeriodKey struct {
	RecurringID string `json:"recurringID"`
	Month       int    `json:"month"` // 1-12
	Year        int    `json:"year"`
}

// NewPeriodKey builds a PeriodKey.
func NewPeriodKey(recurringID string, month, year int) PeriodKey {
	return PeriodKey{RecurringID: recurringID, Month: month, Year: year}
}

// Valid reports whether month and year are in range.
func (k PeriodKey) Valid() bool {
	return k.RecurringID != "" && k.Month >= 1 && k.Month <= 12 && k.Year >= 1 && k.Year <= 9999
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%s/%04d-%02d", k.RecurringID, k.Year, k.Month)
}

// OverrideType is the persisted discriminator of an OverrideAction.
type OverrideType string

const (
	OverrideSkip         OverrideType = "SKIP"
	OverrideAmountChange OverrideType = "AMOUNT_CHANGE"
)

// OverrideAction is what an override does to its period.
// The set of implementations is closed: SkipOverride and AmountChangeOverride.
type OverrideAction interface {
	Type() OverrideType
	overrideAction()
}

// SkipOverride marks the period as not to be generated.
type SkipOverride struct{}

func (SkipOverride) Type() OverrideType { return OverrideSkip }
func (SkipOverride) overrideAction()    {}

// AmountChangeOverride replaces the amount of the period's occurrence.
type AmountChangeOverride struct {
	Amount decimal.Decimal
}

func (AmountChangeOverride) Type() OverrideType { return OverrideAmountChange }
func (AmountChangeOverride) overrideAction()    {}

// NewOverrideAction rebuilds an action from its persisted form.
func NewOverrideAction(t OverrideType, amount *decimal.Decimal) (OverrideAction, error) {
	switch t {
	case OverrideSkip:
		return SkipOverride{}, nil
	case OverrideAmountChange:
		if amount == nil {
			return nil, fmt.Errorf("override type %s requires an amount", t)
		}
		return AmountChangeOverride{Amount: *amount}, nil
	default:
		return nil, fmt.Errorf("unknown override type %q", t)
	}
}

// PeriodOverride adjusts a single period without touching the definition.
type PeriodOverride struct {
	OverrideID     string          `json:"overrideID"`
	Key            PeriodKey       `json:"key"`
	Action         OverrideAction  `json:"-"`
	OriginalAmount decimal.Decimal `json:"originalAmount"` // Definition amount when the override was set
	Note           string          `json:"note"`
	AuditFields
}

// IsSkip reports whether the override skips its period.
func (o *PeriodOverride) IsSkip() bool {
	_, ok := o.Action.(SkipOverride)
	return ok
}

// OverrideAmount returns the replacement amount for AMOUNT_CHANGE overrides.
func (o *PeriodOverride) OverrideAmount() (decimal.Decimal, bool) {
	if a, ok := o.Action.(AmountChangeOverride); ok {
		return a.Amount, true
	}
	return decimal.Zero, false
}
