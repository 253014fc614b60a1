package ignore

import (
	"context"
	"sort"
	"sync"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]map[string]struct{})}
}

func memoryKey(cardName string, competency model.Competency) string {
	return cardName + "|" + competency.String()
}

// GetIgnoredIDs implements Store.
func (s *MemoryStore) GetIgnoredIDs(_ context.Context, cardName string, competency model.Competency) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[memoryKey(cardName, competency)]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AddIgnoredID implements Store.
func (s *MemoryStore) AddIgnoredID(_ context.Context, cardName string, competency model.Competency, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(cardName, competency)
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]struct{})
	}
	s.sets[key][id] = struct{}{}
	return nil
}

// RemoveIgnoredID implements Store.
func (s *MemoryStore) RemoveIgnoredID(_ context.Context, cardName string, competency model.Competency, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sets[memoryKey(cardName, competency)], id)
	return nil
}
