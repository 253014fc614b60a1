// Package ignore keeps the set of transaction and allocation ids a user chose
// to exclude from a card/competency reconciliation.
package ignore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// persistTimeout bounds a single background persistence request.
const persistTimeout = 30 * time.Second

// Store persists ignored ids keyed by card and competency.
type Store interface {
	GetIgnoredIDs(ctx context.Context, cardName string, competency model.Competency) ([]string, error)
	AddIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error
	RemoveIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error
}

// Registry is the in-memory ignore set of one session.
//
// Toggle updates memory first and persists in the background. A failed
// request is logged and not rolled back, so memory and store may diverge
// until the next Load.
type Registry struct {
	store      Store
	cardName   string
	competency model.Competency
	logger     *slog.Logger

	mu       sync.RWMutex
	ids      map[string]struct{}
	queue    []toggleOp
	draining bool
	pending  int
	wg       sync.WaitGroup
}

// Load fetches the ignored ids for the card and competency once.
func Load(ctx context.Context, store Store, cardName string, competency model.Competency) (*Registry, error) {
	ids, err := store.GetIgnoredIDs(ctx, cardName, competency)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignored ids: %w", err)
	}

	r := &Registry{
		store:      store,
		cardName:   cardName,
		competency: competency,
		logger:     slog.Default(),
		ids:        make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		r.ids[id] = struct{}{}
	}
	return r, nil
}

// WithLogger sets the logger used for persistence failures.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// IsIgnored reports whether id is in the ignore set.
func (r *Registry) IsIgnored(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[id]
	return ok
}

// IDs returns the ignored ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle flips the membership of id and returns whether it is now ignored.
// The change is persisted by a background request; ctx only carries values
// to it, its cancellation does not abort the request. Requests are sent in
// toggle order.
func (r *Registry) Toggle(ctx context.Context, id string) bool {
	r.mu.Lock()
	_, wasIgnored := r.ids[id]
	if wasIgnored {
		delete(r.ids, id)
	} else {
		r.ids[id] = struct{}{}
	}
	r.queue = append(r.queue, toggleOp{ctx: context.WithoutCancel(ctx), id: id, ignored: !wasIgnored})
	r.pending++
	r.wg.Add(1)
	start := !r.draining
	r.draining = true
	r.mu.Unlock()

	if start {
		go r.drain()
	}

	return !wasIgnored
}

type toggleOp struct {
	ctx     context.Context
	id      string
	ignored bool
}

func (r *Registry) drain() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		op := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		r.persist(op)

		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
		r.wg.Done()
	}
}

func (r *Registry) persist(op toggleOp) {
	ctx, cancel := context.WithTimeout(op.ctx, persistTimeout)
	defer cancel()

	var err error
	if op.ignored {
		err = r.store.AddIgnoredID(ctx, r.cardName, r.competency, op.id)
	} else {
		err = r.store.RemoveIgnoredID(ctx, r.cardName, r.competency, op.id)
	}
	if err != nil {
		r.logger.Error("Failed to persist ignore toggle",
			"card", r.cardName,
			"competency", r.competency.String(),
			"id", op.id,
			"ignored", op.ignored,
			"error", err,
		)
	}
}

// Pending returns the number of persistence requests still in flight.
func (r *Registry) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending
}

// Wait blocks until every in-flight persistence request has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}
