// Package api exposes reconciliation sessions over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ignore"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/reconcile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

// ErrSessionNotFound is returned when no session was opened for a card and competency.
var ErrSessionNotFound = errors.New("session not found")

// ParameterSource lists the configured accounting parameters in configuration order.
type ParameterSource interface {
	ListParameters(ctx context.Context) ([]model.AccountingParameter, error)
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Store        ignore.Store
	Parameters   ParameterSource
	Keywords     params.KeywordTable
	NarrativeMax int
	PageSize     int
	Logger       *slog.Logger
}

// Manager keeps one open session per card and competency.
type Manager struct {
	cfg        ManagerConfig
	reconciler *reconcile.Reconciler

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewManager creates a Manager. Sessions share one memoizing reconciler.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		cfg:        cfg,
		reconciler: reconcile.NewReconciler(reconcile.DefaultMemoExpiration),
		sessions:   make(map[string]*session.Session),
	}
}

func sessionKey(cardName string, competency model.Competency) string {
	return competency.String() + "/" + cardName
}

// Open loads a session for the card and competency, replacing any previous
// one. The replaced session's export ledger is discarded.
func (m *Manager) Open(ctx context.Context, cardName string, competency model.Competency, txs []model.Transaction, allocs []model.Allocation) (*session.Session, error) {
	parameters, err := m.cfg.Parameters.ListParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounting parameters: %w", err)
	}

	s, err := session.Open(ctx, m.cfg.Store, session.Options{
		CardName:     cardName,
		Competency:   competency,
		Transactions: txs,
		Allocations:  allocs,
		Parameters:   parameters,
		Keywords:     m.cfg.Keywords,
		NarrativeMax: m.cfg.NarrativeMax,
		PageSize:     m.cfg.PageSize,
		Reconciler:   m.reconciler,
		Logger:       m.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	key := sessionKey(cardName, competency)
	m.mu.Lock()
	previous := m.sessions[key]
	m.sessions[key] = s
	m.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	return s, nil
}

// Get returns the open session for the card and competency.
func (m *Manager) Get(cardName string, competency model.Competency) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionKey(cardName, competency)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close waits for every session's pending ignore toggles and drops the
// memoized reconciliations.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.sessions {
		s.Close()
		delete(m.sessions, key)
	}
	m.reconciler.Flush()
}
