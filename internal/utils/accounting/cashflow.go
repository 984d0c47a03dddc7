package accounting

import (
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the cash flow sign of a definition kind to an amount.
// INCOME -> Positive (+)
// EXPENSE -> Negative (-)
func SignedAmount(kind domain.RecurringKind, amount decimal.Decimal) decimal.Decimal {
	if kind == domain.KindExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// NetCashFlow sums the signed amounts of the occurrences that still move money.
// Skipped occurrences do not count.
func NetCashFlow(occurrences []domain.ResolvedOccurrence) decimal.Decimal {
	net := decimal.Zero
	for _, occ := range occurrences {
		if occ.Status == domain.StatusSkipped {
			continue
		}
		net = net.Add(SignedAmount(occ.Kind, occ.Amount))
	}
	return net
}
