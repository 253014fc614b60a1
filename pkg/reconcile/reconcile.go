package reconcile

import (
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// Result is the full classification of one card/competency session.
// Every non-ignored allocation appears in exactly one of Reconciled,
// UnmatchedAllocations and OutOfPeriodAllocations.
type Result struct {
	Reconciled             []model.ReconciledPair `json:"reconciled"`
	UnmatchedTransactions  []model.Transaction    `json:"unmatchedTransactions"`
	UnmatchedAllocations   []model.Allocation     `json:"unmatchedAllocations"`
	OutOfPeriodAllocations []model.Allocation     `json:"outOfPeriodAllocations"`
	IgnoredTransactions    []model.Transaction    `json:"ignoredTransactions"`
	IgnoredAllocations     []model.Allocation     `json:"ignoredAllocations"`
}

// Summary holds the counters shown on the reconciliation view.
type Summary struct {
	Reconciled          int `json:"reconciled"`
	PendingTransactions int `json:"pendingTransactions"`
	PendingAllocations  int `json:"pendingAllocations"`
	OutOfPeriod         int `json:"outOfPeriod"`
	IgnoredTransactions int `json:"ignoredTransactions"`
	IgnoredAllocations  int `json:"ignoredAllocations"`
}

// Summary returns the result counters.
func (r Result) Summary() Summary {
	return Summary{
		Reconciled:          len(r.Reconciled),
		PendingTransactions: len(r.UnmatchedTransactions),
		PendingAllocations:  len(r.UnmatchedAllocations),
		OutOfPeriod:         len(r.OutOfPeriodAllocations),
		IgnoredTransactions: len(r.IgnoredTransactions),
		IgnoredAllocations:  len(r.IgnoredAllocations),
	}
}

// IgnoreChecker is satisfied by anything that can tell whether an id is ignored.
type IgnoreChecker interface {
	IsIgnored(id string) bool
}

// IgnoreSet is a plain set of ignored ids.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds a set from ids.
func NewIgnoreSet(ids ...string) IgnoreSet {
	s := make(IgnoreSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// IsIgnored implements IgnoreChecker.
func (s IgnoreSet) IsIgnored(id string) bool {
	_, ok := s[id]
	return ok
}

// Reconcile drops ignored items, splits allocations by competency and matches
// transactions against the in-period allocations. It has no side effects and
// returns the same result for the same inputs.
func Reconcile(txs []model.Transaction, allocs []model.Allocation, ignored IgnoreChecker, competency model.Competency) Result {
	if ignored == nil {
		ignored = IgnoreSet{}
	}

	activeTxs := make([]model.Transaction, 0, len(txs))
	ignoredTxs := make([]model.Transaction, 0)
	for _, tx := range txs {
		if ignored.IsIgnored(tx.ID) {
			ignoredTxs = append(ignoredTxs, tx)
			continue
		}
		activeTxs = append(activeTxs, tx)
	}

	activeAllocs := make([]model.Allocation, 0, len(allocs))
	ignoredAllocs := make([]model.Allocation, 0)
	for _, a := range allocs {
		if ignored.IsIgnored(a.ID) {
			ignoredAllocs = append(ignoredAllocs, a)
			continue
		}
		activeAllocs = append(activeAllocs, a)
	}

	inPeriod, outOfPeriod := SplitByCompetency(activeAllocs, competency)
	matched := Match(activeTxs, inPeriod)

	return Result{
		Reconciled:             matched.Reconciled,
		UnmatchedTransactions:  matched.UnmatchedTransactions,
		UnmatchedAllocations:   matched.UnmatchedAllocations,
		OutOfPeriodAllocations: outOfPeriod,
		IgnoredTransactions:    ignoredTxs,
		IgnoredAllocations:     ignoredAllocs,
	}
}
