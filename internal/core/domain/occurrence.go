package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccurrenceStatus is the computed state of one period.
type OccurrenceStatus string

const (
	StatusDue     OccurrenceStatus = "DUE"
	StatusSkipped OccurrenceStatus = "SKIPPED"
	StatusPaid    OccurrenceStatus = "PAID"
	StatusOverdue OccurrenceStatus = "OVERDUE"
)

// ResolvedOccurrence is a definition's occurrence in one period with overrides
// and payments applied. It is computed, never stored.
type ResolvedOccurrence struct {
	Key              PeriodKey          `json:"key"`
	UserID           string             `json:"userID"`
	Name             string             `json:"name"`
	Kind             RecurringKind      `json:"kind"`
	Category         string             `json:"category"`
	DueDate          time.Time          `json:"dueDate"`
	Amount           decimal.Decimal    `json:"amount"`
	Status           OccurrenceStatus   `json:"status"`
	InstallmentIndex int                `json:"installmentIndex"` // 0-based schedule index
	IsInstallment    bool               `json:"isInstallment"`
	Override         *PeriodOverride    `json:"override,omitempty"`
	Payment          *OccurrencePayment `json:"payment,omitempty"`
}

// Actionable reports whether the occurrence can still be generated.
func (o ResolvedOccurrence) Actionable() bool {
	return o.Status == StatusDue || o.Status == StatusOverdue
}
