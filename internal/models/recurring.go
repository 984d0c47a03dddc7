package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// RecurringDefinition is a row of recurring_definitions.
type RecurringDefinition struct {
	RecurringID            string              `json:"recurringID"` // Primary Key (UUID)
	UserID                 string              `json:"userID"`
	Name                   string              `json:"name"`
	Kind                   string              `json:"kind"`
	Category               string              `json:"category"`
	Amount                 decimal.Decimal     `json:"amount"`
	AccountID              sql.NullString      `json:"accountID"`
	Frequency              string              `json:"frequency"`
	AnchorDay              sql.NullInt32       `json:"anchorDay"`
	StartDate              time.Time           `json:"startDate"` // DATE
	EndDate                sql.NullTime        `json:"endDate"`   // DATE
	IsInstallment          bool                `json:"isInstallment"`
	TotalInstallments      int32               `json:"totalInstallments"`
	CurrentInstallment     int32               `json:"currentInstallment"`
	InstallmentTotalAmount decimal.NullDecimal `json:"installmentTotalAmount"`
	IsActive               bool                `json:"isActive"`
	NotifyDaysBefore       int32               `json:"notifyDaysBefore"`
	AutoGenerate           bool                `json:"autoGenerate"`
	DeletedAt              sql.NullTime        `json:"deletedAt"`
	AuditFields
}
