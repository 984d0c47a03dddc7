package dto

import (
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetOverrideRequest defines the override applied to one period.
type SetOverrideRequest struct {
	Type   domain.OverrideType `json:"type" binding:"required,oneof=SKIP AMOUNT_CHANGE"`
	Amount *decimal.Decimal    `json:"amount"` // Required for AMOUNT_CHANGE
	Note   string              `json:"note" binding:"max=500"`
}

// OverrideResponse defines the data returned for a period override.
type OverrideResponse struct {
	OverrideID     string              `json:"overrideID"`
	RecurringID    string              `json:"recurringID"`
	Month          int                 `json:"month"`
	Year           int                 `json:"year"`
	Type           domain.OverrideType `json:"type"`
	Amount         *decimal.Decimal    `json:"amount,omitempty"`
	OriginalAmount decimal.Decimal     `json:"originalAmount"`
	Note           string              `json:"note,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastUpdatedAt  time.Time           `json:"lastUpdatedAt"`
}

// ToOverrideResponse converts a domain.PeriodOverride to OverrideResponse DTO
func ToOverrideResponse(o *domain.PeriodOverride) OverrideResponse {
	res := OverrideResponse{
		OverrideID:     o.OverrideID,
		RecurringID:    o.Key.RecurringID,
		Month:          o.Key.Month,
		Year:           o.Key.Year,
		Type:           o.Action.Type(),
		OriginalAmount: o.OriginalAmount,
		Note:           o.Note,
		CreatedAt:      o.CreatedAt,
		LastUpdatedAt:  o.LastUpdatedAt,
	}
	if amount, ok := o.OverrideAmount(); ok {
		res.Amount = &amount
	}
	return res
}

// ToListOverrideResponse converts a slice of overrides to OverrideResponse DTOs
func ToListOverrideResponse(overrides []domain.PeriodOverride) []OverrideResponse {
	res := make([]OverrideResponse, len(overrides))
	for i := range overrides {
		res[i] = ToOverrideResponse(&overrides[i])
	}
	return res
}
