// Package split computes per-debtor shares for an expense.
//
// The household rule: the payer and the debtors each count as one equal
// part, but only the debtors get stored shares; the payer's part stays
// implicit. Arithmetic runs on integer cents and any remainder cents go
// to the first debtors in input order, so the payer never absorbs
// rounding. Callers must pass debtors in a deterministic order
// (selection order) to get reproducible splits.
package split

import (
	"errors"

	"github.com/splitnest/splitnest/internal/money"
)

// Common errors
var (
	ErrNoDebtors         = errors.New("at least one participant must owe this expense")
	ErrPayerIsDebtor     = errors.New("the payer cannot owe their own expense")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// Share is one debtor's computed obligation toward the payer.
type Share struct {
	DebtorID string  `json:"debtor_id"`
	Amount   float64 `json:"amount"`
}

// Shares splits totalAmount among debtorIDs. Duplicates are dropped
// (first occurrence wins). Pure function, no side effects.
func Shares(totalAmount float64, payerID string, debtorIDs []string) ([]Share, error) {
	if totalAmount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	debtors := dedupe(debtorIDs)
	if len(debtors) == 0 {
		return nil, ErrNoDebtors
	}
	for _, id := range debtors {
		if id == payerID {
			return nil, ErrPayerIsDebtor
		}
	}

	// The payer is one of the n+1 equal parts; base is the payer's
	// implicit share, remainder cents are front-loaded onto debtors.
	total := money.ToCents(totalAmount)
	parts := int64(len(debtors) + 1)
	base := total / parts
	remainder := total % parts

	shares := make([]Share, len(debtors))
	for i, id := range debtors {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = Share{DebtorID: id, Amount: money.FromCents(cents)}
	}

	return shares, nil
}

// dedupe removes duplicate ids while preserving input order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
