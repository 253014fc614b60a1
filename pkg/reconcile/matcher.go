package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// AmountTolerance is the largest difference (exclusive) at which two amounts
// are considered equal.
var AmountTolerance = decimal.RequireFromString("0.01")

// MatchResult is the output of Match.
type MatchResult struct {
	Reconciled            []model.ReconciledPair
	UnmatchedTransactions []model.Transaction
	UnmatchedAllocations  []model.Allocation
}

// AmountsMatch reports whether a and b differ by less than AmountTolerance.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(AmountTolerance)
}

// Match pairs transactions with allocations of equal amount.
//
// Transactions are visited from last to first; each takes the first remaining
// allocation (in input order) within tolerance. The matching is greedy and
// order-dependent: ties are broken by allocation order. Residuals keep their
// input order.
func Match(txs []model.Transaction, allocs []model.Allocation) MatchResult {
	txMatched := make([]bool, len(txs))
	allocMatched := make([]bool, len(allocs))
	reconciled := make([]model.ReconciledPair, 0)

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		for j, al := range allocs {
			if allocMatched[j] || !AmountsMatch(al.Amount, tx.Amount) {
				continue
			}
			reconciled = append(reconciled, model.ReconciledPair{
				Transaction: tx,
				Allocation:  al,
				MatchScore:  model.FullMatchScore,
			})
			txMatched[i] = true
			allocMatched[j] = true
			break
		}
	}

	result := MatchResult{
		Reconciled:            reconciled,
		UnmatchedTransactions: make([]model.Transaction, 0),
		UnmatchedAllocations:  make([]model.Allocation, 0),
	}
	for i, tx := range txs {
		if !txMatched[i] {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, tx)
		}
	}
	for j, al := range allocs {
		if !allocMatched[j] {
			result.UnmatchedAllocations = append(result.UnmatchedAllocations, al)
		}
	}

	return result
}
