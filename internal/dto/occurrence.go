package dto

import (
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// OccurrenceQueryParams defines query parameters of the projection endpoints.
type OccurrenceQueryParams struct {
	Days *int   `form:"days" binding:"omitempty,min=0"`
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// PaymentResponse defines the data returned for a generated occurrence.
type PaymentResponse struct {
	PaymentID           string          `json:"paymentID"`
	RecurringID         string          `json:"recurringID"`
	Month               int             `json:"month"`
	Year                int             `json:"year"`
	DueDay              int             `json:"dueDay"`
	AmountPaid          decimal.Decimal `json:"amountPaid"`
	PaidAt              time.Time       `json:"paidAt"`
	LedgerTransactionID string          `json:"ledgerTransactionID"`
}

// GenerationResponse is returned by the generate endpoint.
type GenerationResponse struct {
	Payment          PaymentResponse `json:"payment"`
	AlreadyGenerated bool            `json:"alreadyGenerated"`
}

// UndoResponse is returned when a generated occurrence is undone.
type UndoResponse struct {
	PaymentID           string `json:"paymentID"`
	LedgerTransactionID string `json:"ledgerTransactionID"`
	Reactivated         bool   `json:"reactivated"`
}

// OccurrenceResponse defines a resolved occurrence.
type OccurrenceResponse struct {
	RecurringID      string                  `json:"recurringID"`
	Name             string                  `json:"name"`
	Kind             domain.RecurringKind    `json:"kind"`
	Category         string                  `json:"category"`
	Month            int                     `json:"month"`
	Year             int                     `json:"year"`
	DueDate          string                  `json:"dueDate"`
	Amount           decimal.Decimal         `json:"amount"`
	SignedAmount     decimal.Decimal         `json:"signedAmount"` // Income positive, expense negative
	Status           domain.OccurrenceStatus `json:"status"`
	IsInstallment    bool                    `json:"isInstallment"`
	InstallmentIndex *int                    `json:"installmentNumber,omitempty"` // 1-based
	PaymentID        *string                 `json:"paymentID,omitempty"`
	OverrideNote     *string                 `json:"overrideNote,omitempty"`
}

// ListOccurrencesResponse wraps projected occurrences.
type ListOccurrencesResponse struct {
	AsOf        string               `json:"asOf"`
	NetAmount   decimal.Decimal      `json:"netAmount"` // Signed sum of the occurrences that are not skipped
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// ToPaymentResponse converts a domain.OccurrencePayment to PaymentResponse DTO
func ToPaymentResponse(p *domain.OccurrencePayment) PaymentResponse {
	return PaymentResponse{
		PaymentID:           p.PaymentID,
		RecurringID:         p.Key.RecurringID,
		Month:               p.Key.Month,
		Year:                p.Key.Year,
		DueDay:              p.DueDay,
		AmountPaid:          p.AmountPaid,
		PaidAt:              p.PaidAt,
		LedgerTransactionID: p.LedgerTransactionID,
	}
}

// ToListPaymentResponse converts a slice of payments to PaymentResponse DTOs
func ToListPaymentResponse(payments []domain.OccurrencePayment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}

// ToGenerationResponse converts a domain.GenerationResult to its DTO.
func ToGenerationResponse(r *domain.GenerationResult) GenerationResponse {
	return GenerationResponse{
		Payment:          ToPaymentResponse(&r.Payment),
		AlreadyGenerated: r.AlreadyGenerated,
	}
}

// ToUndoResponse converts a domain.UndoResult to its DTO.
func ToUndoResponse(r *domain.UndoResult) UndoResponse {
	return UndoResponse{
		PaymentID:           r.PaymentID,
		LedgerTransactionID: r.LedgerTransactionID,
		Reactivated:         r.Reactivated,
	}
}

// ToOccurrenceResponse converts a domain.ResolvedOccurrence to OccurrenceResponse DTO
func ToOccurrenceResponse(o *domain.ResolvedOccurrence) OccurrenceResponse {
	res := OccurrenceResponse{
		RecurringID:   o.Key.RecurringID,
		Name:          o.Name,
		Kind:          o.Kind,
		Category:      o.Category,
		Month:         o.Key.Month,
		Year:          o.Key.Year,
		DueDate:       o.DueDate.Format(DateLayout),
		Amount:        o.Amount,
		SignedAmount:  accounting.SignedAmount(o.Kind, o.Amount),
		Status:        o.Status,
		IsInstallment: o.IsInstallment,
	}
	if o.IsInstallment {
		n := o.InstallmentIndex + 1
		res.InstallmentIndex = &n
	}
	if o.Payment != nil {
		res.PaymentID = &o.Payment.PaymentID
	}
	if o.Override != nil && o.Override.Note != "" {
		res.OverrideNote = &o.Override.Note
	}
	return res
}

// ToListOccurrencesResponse converts resolved occurrences to the list DTO.
func ToListOccurrencesResponse(asOf time.Time, occurrences []domain.ResolvedOccurrence) ListOccurrencesResponse {
	res := make([]OccurrenceResponse, len(occurrences))
	for i := range occurrences {
		res[i] = ToOccurrenceResponse(&occurrences[i])
	}
	return ListOccurrencesResponse{
		AsOf:        asOf.Format(DateLayout),
		NetAmount:   accounting.NetCashFlow(occurrences),
		Occurrences: res,
	}
}
