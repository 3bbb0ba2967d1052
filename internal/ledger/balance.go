// Package ledger holds the pure domain rules of the personal-finance core:
// balance reconciliation arithmetic, derived progress figures, aggregate
// summaries, calendar windows and entity validators. Nothing here performs I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"tesoro/internal/models"
)

// BalanceDelta returns the signed change a transaction makes to its account.
// Income and transfer credit the account; expense debits it.
func BalanceDelta(txType models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txType == models.TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// ApplyTransaction returns the balance after recording a transaction.
func ApplyTransaction(balance decimal.Decimal, txType models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return balance.Add(BalanceDelta(txType, amount))
}

// RevertTransaction returns the balance after undoing a transaction.
// It is the exact inverse of ApplyTransaction.
func RevertTransaction(balance decimal.Decimal, txType models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return balance.Sub(BalanceDelta(txType, amount))
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is zero.
func Percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
