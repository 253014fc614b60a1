package reconcile

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAmountsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"100.004", "100.00", true},
		{"100.00", "100.00", true},
		{"100.02", "100.00", false},
		{"100.01", "100.00", false},
		{"99.991", "100.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := AmountsMatch(amount(tt.a), amount(tt.b)); got != tt.want {
				t.Errorf("AmountsMatch(%s, %s) = %v, expected %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMatchScenario(t *testing.T) {
	txs := []model.Transaction{
		{ID: "A", Date: "05/03/24", Amount: amount("50.00")},
		{ID: "B", Date: "06/03/24", Amount: amount("120.00")},
	}
	allocs := []model.Allocation{
		{ID: "X", Date: "06/03/24", Amount: amount("120.00")},
		{ID: "Y", Date: "07/03/24", Amount: amount("15.00")},
	}

	result := Match(txs, allocs)

	if len(result.Reconciled) != 1 {
		t.Fatalf("expected 1 reconciled pair, got %d", len(result.Reconciled))
	}
	pair := result.Reconciled[0]
	if pair.Transaction.ID != "B" || pair.Allocation.ID != "X" {
		t.Errorf("reconciled pair = (%s,%s), expected (B,X)", pair.Transaction.ID, pair.Allocation.ID)
	}
	if pair.MatchScore != model.FullMatchScore {
		t.Errorf("match score = %d, expected %d", pair.MatchScore, model.FullMatchScore)
	}
	if got := txIDs(result.UnmatchedTransactions); !equalStrings(got, []string{"A"}) {
		t.Errorf("unmatched transactions = %v, expected [A]", got)
	}
	if got := allocIDs(result.UnmatchedAllocations); !equalStrings(got, []string{"Y"}) {
		t.Errorf("unmatched allocations = %v, expected [Y]", got)
	}
}

func TestMatchTieBreaking(t *testing.T) {
	txs := []model.Transaction{
		{ID: "T1", Amount: amount("10.00")},
		{ID: "T2", Amount: amount("10.00")},
		{ID: "T3", Amount: amount("10.00")},
	}
	allocs := []model.Allocation{
		{ID: "P", Amount: amount("10.00")},
		{ID: "Q", Amount: amount("10.001")},
	}

	result := Match(txs, allocs)

	// Transactions are visited last to first; allocations in list order.
	want := [][2]string{{"T3", "P"}, {"T2", "Q"}}
	if len(result.Reconciled) != len(want) {
		t.Fatalf("expected %d pairs, got %d", len(want), len(result.Reconciled))
	}
	for i, pair := range result.Reconciled {
		if pair.Transaction.ID != want[i][0] || pair.Allocation.ID != want[i][1] {
			t.Errorf("pair %d = (%s,%s), expected (%s,%s)", i, pair.Transaction.ID, pair.Allocation.ID, want[i][0], want[i][1])
		}
	}
	if got := txIDs(result.UnmatchedTransactions); !equalStrings(got, []string{"T1"}) {
		t.Errorf("unmatched transactions = %v, expected [T1]", got)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	result := Match(nil, nil)
	if len(result.Reconciled) != 0 || len(result.UnmatchedTransactions) != 0 || len(result.UnmatchedAllocations) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestReconcileCountsAreConserved(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	march := model.Competency{Year: 2024, Month: time.March}
	months := []string{"02", "03", "04"}

	for run := 0; run < 50; run++ {
		var txs []model.Transaction
		var allocs []model.Allocation
		ignored := NewIgnoreSet()

		nTxs, nAllocs := rng.Intn(30), rng.Intn(30)
		for i := 0; i < nTxs; i++ {
			id := fmt.Sprintf("t%d", i)
			txs = append(txs, model.Transaction{ID: id, Amount: decimal.NewFromInt(int64(rng.Intn(8))).Add(decimal.New(5, -1))})
			if rng.Intn(6) == 0 {
				ignored[id] = struct{}{}
			}
		}
		for i := 0; i < nAllocs; i++ {
			id := fmt.Sprintf("a%d", i)
			allocs = append(allocs, model.Allocation{
				ID:     id,
				Date:   fmt.Sprintf("10/%s/24", months[rng.Intn(len(months))]),
				Amount: decimal.NewFromInt(int64(rng.Intn(8))).Add(decimal.New(5, -1)),
			})
			if rng.Intn(6) == 0 {
				ignored[id] = struct{}{}
			}
		}

		result := Reconcile(txs, allocs, ignored, march)

		activeTxs := len(txs) - len(result.IgnoredTransactions)
		activeAllocs := len(allocs) - len(result.IgnoredAllocations)
		inPeriodAllocs := activeAllocs - len(result.OutOfPeriodAllocations)

		lhs := 2*len(result.Reconciled) + len(result.UnmatchedTransactions) + len(result.UnmatchedAllocations)
		if lhs != activeTxs+inPeriodAllocs {
			t.Fatalf("run %d: 2*%d + %d + %d != %d + %d", run,
				len(result.Reconciled), len(result.UnmatchedTransactions), len(result.UnmatchedAllocations),
				activeTxs, inPeriodAllocs)
		}

		seen := make(map[string]int)
		for _, p := range result.Reconciled {
			seen[p.Allocation.ID]++
		}
		for _, a := range result.UnmatchedAllocations {
			seen[a.ID]++
		}
		for _, a := range result.OutOfPeriodAllocations {
			seen[a.ID]++
		}
		for _, a := range result.IgnoredAllocations {
			if seen[a.ID] != 0 {
				t.Fatalf("run %d: ignored allocation %s was classified", run, a.ID)
			}
		}
		if len(seen) != activeAllocs {
			t.Fatalf("run %d: %d allocations classified, expected %d", run, len(seen), activeAllocs)
		}
		for id, n := range seen {
			if n != 1 {
				t.Fatalf("run %d: allocation %s classified %d times", run, id, n)
			}
		}
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	march := model.Competency{Year: 2024, Month: time.March}
	txs := []model.Transaction{
		{ID: "1", Amount: amount("10.00")},
		{ID: "2", Amount: amount("20.00")},
		{ID: "3", Amount: amount("10.00")},
	}
	allocs := []model.Allocation{
		{ID: "a", Date: "01/03/24", Amount: amount("10.00")},
		{ID: "b", Date: "01/03/24", Amount: amount("20.00")},
		{ID: "c", Date: "01/04/24", Amount: amount("10.00")},
	}

	first := Reconcile(txs, allocs, NewIgnoreSet("2"), march)
	second := Reconcile(txs, allocs, NewIgnoreSet("2"), march)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reconcile is not deterministic:\n%+v\n%+v", first, second)
	}
	if got := allocIDs(first.OutOfPeriodAllocations); !equalStrings(got, []string{"c"}) {
		t.Errorf("out of period = %v, expected [c]", got)
	}
	if got := allocIDs(first.UnmatchedAllocations); !equalStrings(got, []string{"b"}) {
		t.Errorf("unmatched allocations = %v, expected [b]", got)
	}
	if got := txIDs(first.IgnoredTransactions); !equalStrings(got, []string{"2"}) {
		t.Errorf("ignored transactions = %v, expected [2]", got)
	}
}

func TestReconcilerMemoizesByInput(t *testing.T) {
	march := model.Competency{Year: 2024, Month: time.March}
	r := NewReconciler(time.Minute)
	txs := []model.Transaction{{ID: "1", Amount: amount("10.00")}}
	allocs := []model.Allocation{{ID: "a", Date: "01/03/24", Amount: amount("10.00")}}

	first := r.Reconcile(txs, allocs, nil, march)
	second := r.Reconcile(txs, allocs, []string{}, march)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("memoized result differs from first computation")
	}
	if len(first.Reconciled) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(first.Reconciled))
	}

	withIgnore := r.Reconcile(txs, allocs, []string{"a"}, march)
	if len(withIgnore.Reconciled) != 0 {
		t.Errorf("ignore change was served from stale cache")
	}

	april := model.Competency{Year: 2024, Month: time.April}
	otherPeriod := r.Reconcile(txs, allocs, nil, april)
	if len(otherPeriod.OutOfPeriodAllocations) != 1 {
		t.Errorf("competency change was served from stale cache")
	}
}

func TestReconcilerFlush(t *testing.T) {
	march := model.Competency{Year: 2024, Month: time.March}
	r := NewReconciler(time.Minute)
	txs := []model.Transaction{{ID: "1", Amount: amount("10.00")}}
	allocs := []model.Allocation{{ID: "a", Date: "01/03/24", Amount: amount("10.00")}}

	r.Reconcile(txs, allocs, nil, march)
	if n := r.cache.ItemCount(); n != 1 {
		t.Fatalf("cached results = %d, expected 1", n)
	}

	r.Flush()
	if n := r.cache.ItemCount(); n != 0 {
		t.Errorf("cached results after Flush = %d, expected 0", n)
	}
	if got := r.Reconcile(txs, allocs, nil, march); len(got.Reconciled) != 1 {
		t.Errorf("expected recomputed pair after Flush, got %d", len(got.Reconciled))
	}
}
