package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// DefaultMemoExpiration bounds how long a memoized result is kept.
const DefaultMemoExpiration = 10 * time.Minute

// Reconciler memoizes Reconcile keyed by a digest of its inputs, so repeated
// recomputation on unchanged inputs is served from cache and any input change
// produces a fresh result.
type Reconciler struct {
	cache *cache.Cache
}

// NewReconciler creates a Reconciler with the given expiration.
func NewReconciler(expiration time.Duration) *Reconciler {
	if expiration <= 0 {
		expiration = DefaultMemoExpiration
	}
	return &Reconciler{
		cache: cache.New(expiration, 2*expiration),
	}
}

// Reconcile returns the memoized result for the inputs, computing it on a miss.
// The returned slices are shared with the cache and must not be modified.
func (r *Reconciler) Reconcile(txs []model.Transaction, allocs []model.Allocation, ignoredIDs []string, competency model.Competency) Result {
	key, err := inputKey(txs, allocs, ignoredIDs, competency)
	if err != nil {
		return Reconcile(txs, allocs, NewIgnoreSet(ignoredIDs...), competency)
	}

	if cached, found := r.cache.Get(key); found {
		return cached.(Result)
	}

	result := Reconcile(txs, allocs, NewIgnoreSet(ignoredIDs...), competency)
	r.cache.SetDefault(key, result)
	return result
}

// Flush drops every memoized result.
func (r *Reconciler) Flush() {
	r.cache.Flush()
}

type memoInput struct {
	Transactions []model.Transaction `json:"t"`
	Allocations  []model.Allocation  `json:"a"`
	Ignored      []string            `json:"i"`
	Competency   string              `json:"c"`
}

func inputKey(txs []model.Transaction, allocs []model.Allocation, ignoredIDs []string, competency model.Competency) (string, error) {
	ignored := append([]string(nil), ignoredIDs...)
	sort.Strings(ignored)

	data, err := json.Marshal(memoInput{
		Transactions: txs,
		Allocations:  allocs,
		Ignored:      ignored,
		Competency:   competency.String(),
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
