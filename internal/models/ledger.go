package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is a row of ledger_transactions.
type LedgerTransaction struct {
	TransactionID string          `json:"transactionID"`
	UserID        string          `json:"userID"`
	RecurringID   sql.NullString  `json:"recurringID"`
	Description   string          `json:"description"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	TxnDate       time.Time       `json:"txnDate"` // DATE
	Category      string          `json:"category"`
	AccountID     sql.NullString  `json:"accountID"`
	CreatedAt     time.Time       `json:"createdAt"`
}
