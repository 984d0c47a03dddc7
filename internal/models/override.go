package models

import "github.com/shopspring/decimal"

// PeriodOverride is a row of recurring_overrides. Amount is NULL for SKIP.
type PeriodOverride struct {
	OverrideID     string              `json:"overrideID"`
	RecurringID    string              `json:"recurringID"`
	PeriodMonth    int32               `json:"periodMonth"`
	PeriodYear     int32               `json:"periodYear"`
	OverrideType   string              `json:"overrideType"`
	Amount         decimal.NullDecimal `json:"amount"`
	OriginalAmount decimal.Decimal     `json:"originalAmount"`
	Note           string              `json:"note"`
	AuditFields
}
