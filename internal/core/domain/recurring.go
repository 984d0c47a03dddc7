package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringKind tells whether occurrences are money in or money out.
type RecurringKind string

const (
	KindIncome  RecurringKind = "INCOME"
	KindExpense RecurringKind = "EXPENSE"
)

// Frequency is the recurrence rule of a definition.
type Frequency string

const (
	Daily    Frequency = "DAILY"
	Weekly   Frequency = "WEEKLY"
	Biweekly Frequency = "BIWEEKLY"
	Monthly  Frequency = "MONTHLY"
	Yearly   Frequency = "YEARLY"
)

// RequiresAnchorDay reports whether the frequency is pinned to a day of the month.
func (f Frequency) RequiresAnchorDay() bool {
	return f == Monthly || f == Yearly
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

// RecurringDefinition is the template every occurrence is generated from.
type RecurringDefinition struct {
	RecurringID string          `json:"recurringID"` // Primary Key (UUID)
	UserID      string          `json:"userID"`      // Owner
	Name        string          `json:"name"`
	Kind        RecurringKind   `json:"kind"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`    // Default amount of an occurrence
	AccountID   *string         `json:"accountID"` // Optional ledger account

	Frequency Frequency  `json:"frequency"`
	AnchorDay *int       `json:"anchorDay"` // 1-31, MONTHLY/YEARLY only
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`

	IsInstallment          bool             `json:"isInstallment"`
	TotalInstallments      int              `json:"totalInstallments"`
	CurrentInstallment     int              `json:"currentInstallment"`
	InstallmentTotalAmount *decimal.Decimal `json:"installmentTotalAmount"` // Set by installment plans

	IsActive         bool       `json:"isActive"`
	NotifyDaysBefore int        `json:"notifyDaysBefore"`
	AutoGenerate     bool       `json:"autoGenerate"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
	AuditFields
}

// IsDeleted reports whether the definition was soft deleted.
func (r *RecurringDefinition) IsDeleted() bool {
	return r.DeletedAt != nil
}

// InstallmentsExhausted reports whether every installment has been generated.
func (r *RecurringDefinition) InstallmentsExhausted() bool {
	return r.IsInstallment && r.CurrentInstallment >= r.TotalInstallments
}

// AmountForInstallment returns the default amount of the installment at index (0-based).
// The last installment of a plan absorbs the rounding remainder of the total.
func (r *RecurringDefinition) AmountForInstallment(index int) decimal.Decimal {
	if !r.IsInstallment || r.InstallmentTotalAmount == nil || r.TotalInstallments < 1 {
		return r.Amount
	}
	if index != r.TotalInstallments-1 {
		return r.Amount
	}
	paid := r.Amount.Mul(decimal.NewFromInt(int64(r.TotalInstallments - 1)))
	return r.InstallmentTotalAmount.Sub(paid)
}

// AdvanceInstallment records one more generated installment and deactivates the
// definition when the plan is complete. It is a no-op for non-installment definitions.
func (r *RecurringDefinition) AdvanceInstallment() {
	if !r.IsInstallment {
		return
	}
	r.CurrentInstallment++
	if r.CurrentInstallment >= r.TotalInstallments {
		r.CurrentInstallment = r.TotalInstallments
		r.IsActive = false
	}
}

// RewindInstallment reverses AdvanceInstallment. A plan that had been completed by
// the counter becomes active again.
func (r *RecurringDefinition) RewindInstallment() {
	if !r.IsInstallment || r.CurrentInstallment == 0 {
		return
	}
	if r.CurrentInstallment == r.TotalInstallments && !r.IsDeleted() {
		r.IsActive = true
	}
	r.CurrentInstallment--
}

// SplitInstallments divides total into count installments rounded down to cents.
// The returned base amount is used for every installment but the last, which
// absorbs the remainder (see AmountForInstallment).
func SplitInstallments(total decimal.Decimal, count int) (base decimal.Decimal, last decimal.Decimal) {
	if count < 1 {
		return total, total
	}
	n := decimal.NewFromInt(int64(count))
	base = total.Div(n).RoundDown(2)
	last = total.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))
	return base, last
}

// InstallmentPlan is a created installment definition and the periods generated with it.
type InstallmentPlan struct {
	Definition RecurringDefinition `json:"definition"`
	Generated  []GenerationResult  `json:"generated"`
}
