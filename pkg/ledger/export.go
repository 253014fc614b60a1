package ledger

import (
	"errors"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

var (
	// ErrNothingToExport means every selected item was already exported,
	// or nothing was selected.
	ErrNothingToExport = errors.New("nothing new to export")

	// ErrNoParameters means no accounting parameter is configured for the
	// card and intent, so every eligible item was dropped.
	ErrNoParameters = errors.New("no accounting parameters configured")
)

// Status is the outcome of an export request.
type Status string

const (
	StatusOK           Status = "ok"
	StatusNothingNew   Status = "nothing-new"
	StatusNoParameters Status = "no-parameters"
)

// Mode selects how items are turned into entries.
type Mode string

const (
	ModePerItem Mode = "per-item"
	ModeGrouped Mode = "grouped"
)

// ExportRequest describes one export action.
type ExportRequest struct {
	CardName string
	Intent   params.Intent
	Mode     Mode
	Items    []model.SourceItem
}

// ExportResult is the outcome of Exporter.Export.
type ExportResult struct {
	Status  Status
	Entries []model.AccountingEntry
	// Items are the source items covered by Entries.
	Items []model.SourceItem
	// Eligible counts the selected items that were not exported before.
	Eligible int
	// Dropped counts eligible items left out for lack of parameters.
	Dropped int
}

// Err maps the status to a sentinel error, or nil when entries were built.
func (r ExportResult) Err() error {
	switch r.Status {
	case StatusNothingNew:
		return ErrNothingToExport
	case StatusNoParameters:
		return ErrNoParameters
	}
	return nil
}

// Exporter builds entries for items not yet exported and records the items
// it covered in the ExportLedger.
type Exporter struct {
	builder *Builder
	ledger  *ExportLedger
}

// NewExporter creates an Exporter.
func NewExporter(builder *Builder, ledger *ExportLedger) *Exporter {
	return &Exporter{builder: builder, ledger: ledger}
}

// Ledger returns the export ledger.
func (e *Exporter) Ledger() *ExportLedger {
	return e.ledger
}

// Export builds entries for the eligible items of req and marks the items
// that produced entries as exported. Items dropped for lack of parameters are
// not marked.
func (e *Exporter) Export(req ExportRequest) ExportResult {
	eligible := e.ledger.Filter(req.Items)
	result := ExportResult{Eligible: len(eligible)}

	if len(eligible) == 0 {
		result.Status = StatusNothingNew
		return result
	}

	byID := make(map[string]model.SourceItem, len(eligible))
	for _, item := range eligible {
		byID[item.ID] = item
	}

	switch req.Mode {
	case ModeGrouped:
		entry, ok := e.builder.BuildGrouped(req.CardName, req.Intent, eligible)
		if ok {
			result.Entries = []model.AccountingEntry{entry}
		} else {
			result.Dropped = len(eligible)
		}
	default:
		built := e.builder.BuildPerItem(req.CardName, req.Intent, eligible)
		result.Entries = built.Entries
		result.Dropped = built.Dropped
	}

	if len(result.Entries) == 0 {
		result.Status = StatusNoParameters
		return result
	}

	for _, entry := range result.Entries {
		for _, id := range entry.SourceIDs {
			result.Items = append(result.Items, byID[id])
		}
		e.ledger.MarkExported(entry.SourceIDs...)
	}
	result.Status = StatusOK

	return result
}
