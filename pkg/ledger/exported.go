package ledger

import (
	"sort"
	"sync"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ExportLedger remembers which source items were already exported in the
// current session. It is never persisted: a new session starts empty.
type ExportLedger struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewExportLedger creates an empty ledger.
func NewExportLedger() *ExportLedger {
	return &ExportLedger{ids: make(map[string]struct{})}
}

// MarkExported records ids as exported.
func (l *ExportLedger) MarkExported(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
}

// IsExported reports whether id was exported.
func (l *ExportLedger) IsExported(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Filter returns the items not yet exported, preserving order.
func (l *ExportLedger) Filter(items []model.SourceItem) []model.SourceItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]model.SourceItem, 0, len(items))
	for _, item := range items {
		if _, ok := l.ids[item.ID]; !ok {
			result = append(result, item)
		}
	}
	return result
}

// IDs returns the exported ids, sorted.
func (l *ExportLedger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of exported ids.
func (l *ExportLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Reset forgets every exported id.
func (l *ExportLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = make(map[string]struct{})
}
