package mapping

import (
	"database/sql"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/SscSPs/mma_recurring/internal/models"
)

// ToModelLedgerTransaction builds the ledger row for a transaction request.
func ToModelLedgerTransaction(id string, req domain.LedgerTransactionRequest) models.LedgerTransaction {
	return models.LedgerTransaction{
		TransactionID: id,
		UserID:        req.UserID,
		RecurringID:   sql.NullString{String: req.RecurringID, Valid: req.RecurringID != ""},
		Description:   req.Description,
		Kind:          string(req.Kind),
		Amount:        req.Amount,
		TxnDate:       req.Date,
		Category:      req.Category,
		AccountID:     nullString(req.AccountID),
	}
}
