package dto

import (
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates in requests.
const DateLayout = "2006-01-02"

// CreateRecurringRequest defines the data needed to create a recurring definition.
type CreateRecurringRequest struct {
	Name              string               `json:"name" binding:"required,max=255"`
	Kind              domain.RecurringKind `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	Category          string               `json:"category" binding:"max=100"`
	Amount            decimal.Decimal      `json:"amount"`
	AccountID         *string              `json:"accountID" binding:"omitempty,max=64"`
	Frequency         domain.Frequency     `json:"frequency" binding:"required,oneof=DAILY WEEKLY BIWEEKLY MONTHLY YEARLY"`
	AnchorDay         *int                 `json:"anchorDay" binding:"omitempty,min=1,max=31"` // Required for MONTHLY and YEARLY
	StartDate         string               `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate           *string              `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	IsInstallment     bool                 `json:"isInstallment"`
	TotalInstallments int                  `json:"totalInstallments" binding:"min=0,max=1200"`
	NotifyDaysBefore  int                  `json:"notifyDaysBefore" binding:"min=0,max=60"`
	AutoGenerate      bool                 `json:"autoGenerate"`
}

// UpdateRecurringRequest defines the fields that may be edited on a definition.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateRecurringRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Category         *string          `json:"category" binding:"omitempty,max=100"`
	Amount           *decimal.Decimal `json:"amount"`
	AccountID        *string          `json:"accountID" binding:"omitempty,max=64"`
	AnchorDay        *int             `json:"anchorDay" binding:"omitempty,min=1,max=31"`
	EndDate          *string          `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	ClearEndDate     bool             `json:"clearEndDate"`
	NotifyDaysBefore *int             `json:"notifyDaysBefore" binding:"omitempty,min=0,max=60"`
	AutoGenerate     *bool            `json:"autoGenerate"`
}

// CreateInstallmentPlanRequest defines the data needed to split a purchase into monthly installments.
type CreateInstallmentPlanRequest struct {
	Name             string               `json:"name" binding:"required,max=255"`
	Kind             domain.RecurringKind `json:"kind" binding:"omitempty,oneof=INCOME EXPENSE"` // Defaults to EXPENSE
	Category         string               `json:"category" binding:"max=100"`
	TotalAmount      decimal.Decimal      `json:"totalAmount"`
	InstallmentCount int                  `json:"installmentCount" binding:"required,min=2,max=1200"`
	StartDate        string               `json:"startDate" binding:"required,datetime=2006-01-02"`
	AnchorDay        *int                 `json:"anchorDay" binding:"omitempty,min=1,max=31"` // Defaults to the start date's day
	AccountID        *string              `json:"accountID" binding:"omitempty,max=64"`
	GenerateNow      bool                 `json:"generateNow"`
	NotifyDaysBefore int                  `json:"notifyDaysBefore" binding:"min=0,max=60"`
	AutoGenerate     bool                 `json:"autoGenerate"`
}

// ListRecurringParams defines query parameters for listing definitions.
type ListRecurringParams struct {
	Limit           int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken       *string `form:"nextToken"`
	IncludeInactive bool    `form:"includeInactive"`
}

// RecurringResponse defines the data returned for a recurring definition.
type RecurringResponse struct {
	RecurringID            string               `json:"recurringID"`
	Name                   string               `json:"name"`
	Kind                   domain.RecurringKind `json:"kind"`
	Category               string               `json:"category"`
	Amount                 decimal.Decimal      `json:"amount"`
	AccountID              *string              `json:"accountID,omitempty"`
	Frequency              domain.Frequency     `json:"frequency"`
	AnchorDay              *int                 `json:"anchorDay,omitempty"`
	StartDate              string               `json:"startDate"`
	EndDate                *string              `json:"endDate,omitempty"`
	IsInstallment          bool                 `json:"isInstallment"`
	TotalInstallments      int                  `json:"totalInstallments,omitempty"`
	CurrentInstallment     int                  `json:"currentInstallment,omitempty"`
	InstallmentTotalAmount *decimal.Decimal     `json:"installmentTotalAmount,omitempty"`
	IsActive               bool                 `json:"isActive"`
	NotifyDaysBefore       int                  `json:"notifyDaysBefore"`
	AutoGenerate           bool                 `json:"autoGenerate"`
	DeletedAt              *time.Time           `json:"deletedAt,omitempty"`
	CreatedAt              time.Time            `json:"createdAt"`
	CreatedBy              string               `json:"createdBy"`
	LastUpdatedAt          time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy          string               `json:"lastUpdatedBy"`
}

// ListRecurringResponse wraps a page of definitions.
type ListRecurringResponse struct {
	Recurring []RecurringResponse `json:"recurring"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// InstallmentPlanResponse is returned when an installment plan is created.
type InstallmentPlanResponse struct {
	Recurring RecurringResponse `json:"recurring"`
	Generated []PaymentResponse `json:"generated"`
}

// SoftDeleteResponse reports what deleting a definition touched.
type SoftDeleteResponse struct {
	RecurringID        string `json:"recurringID"`
	UnlinkedLedgerTxns int    `json:"unlinkedLedgerTxns"`
	DeletedOverrides   int    `json:"deletedOverrides"`
}

// ToRecurringResponse converts a domain.RecurringDefinition to RecurringResponse DTO
func ToRecurringResponse(def *domain.RecurringDefinition) RecurringResponse {
	res := RecurringResponse{
		RecurringID:            def.RecurringID,
		Name:                   def.Name,
		Kind:                   def.Kind,
		Category:               def.Category,
		Amount:                 def.Amount,
		AccountID:              def.AccountID,
		Frequency:              def.Frequency,
		AnchorDay:              def.AnchorDay,
		StartDate:              def.StartDate.Format(DateLayout),
		IsInstallment:          def.IsInstallment,
		TotalInstallments:      def.TotalInstallments,
		CurrentInstallment:     def.CurrentInstallment,
		InstallmentTotalAmount: def.InstallmentTotalAmount,
		IsActive:               def.IsActive,
		NotifyDaysBefore:       def.NotifyDaysBefore,
		AutoGenerate:           def.AutoGenerate,
		DeletedAt:              def.DeletedAt,
		CreatedAt:              def.CreatedAt,
		CreatedBy:              def.CreatedBy,
		LastUpdatedAt:          def.LastUpdatedAt,
		LastUpdatedBy:          def.LastUpdatedBy,
	}
	if def.EndDate != nil {
		end := def.EndDate.Format(DateLayout)
		res.EndDate = &end
	}
	return res
}

// ToListRecurringResponse converts a slice of definitions to RecurringResponse DTOs
func ToListRecurringResponse(defs []domain.RecurringDefinition) []RecurringResponse {
	res := make([]RecurringResponse, len(defs))
	for i := range defs {
		res[i] = ToRecurringResponse(&defs[i])
	}
	return res
}

// ToInstallmentPlanResponse converts a created plan to its DTO.
func ToInstallmentPlanResponse(plan *domain.InstallmentPlan) InstallmentPlanResponse {
	generated := make([]PaymentResponse, len(plan.Generated))
	for i := range plan.Generated {
		generated[i] = ToPaymentResponse(&plan.Generated[i].Payment)
	}
	return InstallmentPlanResponse{
		Recurring: ToRecurringResponse(&plan.Definition),
		Generated: generated,
	}
}

// ToSoftDeleteResponse converts a domain.SoftDeleteResult to its DTO.
func ToSoftDeleteResponse(res *domain.SoftDeleteResult) SoftDeleteResponse {
	return SoftDeleteResponse{
		RecurringID:        res.RecurringID,
		UnlinkedLedgerTxns: res.UnlinkedLedgerTxns,
		DeletedOverrides:   res.DeletedOverrides,
	}
}
