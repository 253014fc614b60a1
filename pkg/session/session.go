// Package session wires the reconciliation engine for one card and one
// competency: ignore registry, memoized reconciliation, parameter resolution,
// entry building, export tracking and reports.
package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ignore"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ledger"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/pathutil"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/reconcile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
)

// Options configures a session.
type Options struct {
	CardName     string
	Competency   model.Competency
	Transactions []model.Transaction
	Allocations  []model.Allocation
	Parameters   []model.AccountingParameter
	// Keywords defaults to params.DefaultKeywords.
	Keywords params.KeywordTable
	// NarrativeMax defaults to ledger.DefaultMaxNarrativeLength.
	NarrativeMax int
	// PageSize defaults to render.DefaultPageSize.
	PageSize int
	// Reconciler may be shared between sessions; a private one is created if nil.
	Reconciler *reconcile.Reconciler
	Logger     *slog.Logger
}

// Session is one card/competency reconciliation.
// It is safe for concurrent use.
type Session struct {
	cardName   string
	competency model.Competency
	txs        []model.Transaction
	allocs     []model.Allocation
	pageSize   int
	logger     *slog.Logger

	registry   *ignore.Registry
	reconciler *reconcile.Reconciler
	resolver   *params.Resolver
	exporter   *ledger.Exporter

	// exportMu makes filter-build-mark atomic across concurrent exports.
	exportMu sync.Mutex
}

// Open loads the ignored ids of the card and competency and creates a session.
func Open(ctx context.Context, store ignore.Store, opts Options) (*Session, error) {
	if opts.CardName == "" {
		return nil, fmt.Errorf("card name is required")
	}
	if opts.Competency.IsZero() {
		return nil, fmt.Errorf("competency is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := ignore.Load(ctx, store, opts.CardName, opts.Competency)
	if err != nil {
		return nil, err
	}
	registry.WithLogger(logger)

	keywords := opts.Keywords
	if keywords == nil {
		keywords = params.DefaultKeywords()
	}

	reconciler := opts.Reconciler
	if reconciler == nil {
		reconciler = reconcile.NewReconciler(reconcile.DefaultMemoExpiration)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = render.DefaultPageSize
	}

	resolver := params.NewResolver(opts.Parameters, keywords)
	builder := ledger.NewBuilder(resolver, opts.NarrativeMax)

	return &Session{
		cardName:   opts.CardName,
		competency: opts.Competency,
		txs:        opts.Transactions,
		allocs:     opts.Allocations,
		pageSize:   pageSize,
		logger:     logger,
		registry:   registry,
		reconciler: reconciler,
		resolver:   resolver,
		exporter:   ledger.NewExporter(builder, ledger.NewExportLedger()),
	}, nil
}

// CardName returns the card of the session.
func (s *Session) CardName() string {
	return s.cardName
}

// Competency returns the competency of the session.
func (s *Session) Competency() model.Competency {
	return s.competency
}

// Recompute classifies the current inputs with the current ignore set.
func (s *Session) Recompute() reconcile.Result {
	return s.reconciler.Reconcile(s.txs, s.allocs, s.registry.IDs(), s.competency)
}

// ToggleIgnore flips the ignore flag of id and returns the new state.
// Persistence happens in the background; see PendingSync.
func (s *Session) ToggleIgnore(ctx context.Context, id string) bool {
	ignored := s.registry.Toggle(ctx, id)
	s.logger.Debug("Toggled ignore", "card", s.cardName, "id", id, "ignored", ignored)
	return ignored
}

// IsIgnored reports whether id is ignored.
func (s *Session) IsIgnored(id string) bool {
	return s.registry.IsIgnored(id)
}

// PendingSync returns how many ignore toggles are not persisted yet.
func (s *Session) PendingSync() int {
	return s.registry.Pending()
}

// Close waits for pending ignore toggles to be persisted.
func (s *Session) Close() {
	s.registry.Wait()
}

// IsExported reports whether id was already included in an export.
func (s *Session) IsExported(id string) bool {
	return s.exporter.Ledger().IsExported(id)
}

// ResetExports forgets every exported id, making items exportable again.
func (s *Session) ResetExports() {
	s.exporter.Ledger().Reset()
}

// Candidates returns every item a user can export: unmatched transactions,
// then unmatched allocations, then out-of-period allocations.
func Candidates(r reconcile.Result) []model.SourceItem {
	items := model.TransactionItems(r.UnmatchedTransactions)
	items = append(items, model.AllocationItems(r.UnmatchedAllocations)...)
	return append(items, model.AllocationItems(r.OutOfPeriodAllocations)...)
}

// DefaultItems returns the items an intent exports when the caller does not
// select any: statement-side intents take the unmatched transactions,
// allocation settlement takes the unmatched allocations and
// note-already-posted takes the out-of-period allocations.
func DefaultItems(r reconcile.Result, intent params.Intent) []model.SourceItem {
	switch intent {
	case params.IntentPendingTransaction, params.IntentReturnToCard:
		return model.TransactionItems(r.UnmatchedTransactions)
	case params.IntentAllocationSettlement:
		return model.AllocationItems(r.UnmatchedAllocations)
	case params.IntentNoteAlreadyPosted:
		return model.AllocationItems(r.OutOfPeriodAllocations)
	}
	return nil
}

// Select returns the candidates whose id is in ids, in candidate order.
// Unknown ids are skipped.
func Select(candidates []model.SourceItem, ids []string) []model.SourceItem {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var selected []model.SourceItem
	for _, item := range candidates {
		if _, ok := wanted[item.ID]; ok {
			selected = append(selected, item)
		}
	}
	return selected
}

// ExportRequest is one export action.
type ExportRequest struct {
	Intent params.Intent
	Mode   ledger.Mode
	// IDs selects items among the candidates; empty means DefaultItems.
	IDs []string
}

// ExportOutput is the serialized result of an export.
type ExportOutput struct {
	ledger.ExportResult
	FileName string
	Data     []byte
}

// Export builds entries for the selected items that were not exported yet,
// serializes them and marks them exported. The error wraps
// ledger.ErrNothingToExport or ledger.ErrNoParameters when no file was
// produced; the output still carries the counters.
func (s *Session) Export(req ExportRequest) (ExportOutput, error) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	result := s.Recompute()

	var items []model.SourceItem
	if len(req.IDs) == 0 {
		items = DefaultItems(result, req.Intent)
	} else {
		items = Select(Candidates(result), req.IDs)
	}

	exported := s.exporter.Export(ledger.ExportRequest{
		CardName: s.cardName,
		Intent:   req.Intent,
		Mode:     req.Mode,
		Items:    items,
	})
	out := ExportOutput{ExportResult: exported}

	if err := exported.Err(); err != nil {
		s.logger.Info("Nothing exported",
			"card", s.cardName,
			"intent", req.Intent,
			"status", exported.Status,
			"eligible", exported.Eligible,
			"dropped", exported.Dropped,
		)
		return out, fmt.Errorf("export %s for %s: %w", req.Intent, s.cardName, err)
	}

	var buf bytes.Buffer
	if err := render.WriteLedgerCSV(&buf, exported.Entries); err != nil {
		return out, err
	}
	out.Data = buf.Bytes()
	out.FileName = pathutil.ExportFileName(s.cardName, s.competency, req.Intent.FileSuffix())

	if exported.Dropped > 0 {
		s.logger.Warn("Items without accounting parameters were left out",
			"card", s.cardName,
			"intent", req.Intent,
			"dropped", exported.Dropped,
		)
	}

	return out, nil
}

// ReportRequest selects the items of a report.
type ReportRequest struct {
	Heading string
	// IDs selects items among the candidates; empty means every candidate.
	IDs []string
	// Now stamps the title block; zero means time.Now.
	Now time.Time
}

// Report builds a paginated report of pending items. The batch column is
// shown when any selected item carries a batch.
func (s *Session) Report(req ReportRequest) render.Report {
	items := Candidates(s.Recompute())
	if len(req.IDs) > 0 {
		items = Select(items, req.IDs)
	}

	showBatch := false
	for _, item := range items {
		if item.Batch != "" {
			showBatch = true
			break
		}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	return render.BuildReport(render.ReportTitle{
		Heading:     req.Heading,
		CardName:    s.cardName,
		Competency:  s.competency,
		GeneratedAt: now,
	}, items, render.ReportOptions{PageSize: s.pageSize, ShowBatch: showBatch})
}

// Parameters returns the accounting parameters configured for the card.
func (s *Session) Parameters() []model.AccountingParameter {
	return s.resolver.ForCard(s.cardName)
}

// ParameterUse is a card parameter and the intents whose keywords its motive matches.
type ParameterUse struct {
	Parameter model.AccountingParameter `json:"parameter"`
	Intents   []params.Intent           `json:"intents"`
}

// ParameterUses lists the card's parameters in configuration order with the
// intents each one can serve. A parameter matching no intent is still listed.
func (s *Session) ParameterUses() []ParameterUse {
	keywords := s.resolver.Keywords()

	uses := []ParameterUse{}
	for _, p := range s.Parameters() {
		use := ParameterUse{Parameter: p, Intents: []params.Intent{}}
		for _, intent := range params.Intents {
			if keywords.Matches(intent, p.Motive) {
				use.Intents = append(use.Intents, intent)
			}
		}
		uses = append(uses, use)
	}
	return uses
}
