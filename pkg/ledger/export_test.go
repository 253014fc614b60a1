package ledger

import (
	"errors"
	"testing"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

func TestExportIsIdempotent(t *testing.T) {
	exporter := NewExporter(NewBuilder(testResolver(), 0), NewExportLedger())
	req := ExportRequest{
		CardName: "Visa",
		Intent:   params.IntentAllocationSettlement,
		Mode:     ModePerItem,
		Items: []model.SourceItem{
			{ID: "a1", Kind: model.KindAllocation, Amount: amount("10")},
			{ID: "a2", Kind: model.KindAllocation, Amount: amount("20")},
		},
	}

	first := exporter.Export(req)
	if first.Status != StatusOK || len(first.Entries) != 2 || first.Err() != nil {
		t.Fatalf("first export = %+v", first)
	}
	if !exporter.Ledger().IsExported("a1") || !exporter.Ledger().IsExported("a2") {
		t.Error("expected items to be marked exported")
	}

	second := exporter.Export(req)
	if len(second.Entries) != 0 {
		t.Errorf("second export built %d entries, expected 0", len(second.Entries))
	}
	if second.Status != StatusNothingNew || !errors.Is(second.Err(), ErrNothingToExport) {
		t.Errorf("second export status = %s, expected %s", second.Status, StatusNothingNew)
	}
}

func TestExportNoParametersIsDistinct(t *testing.T) {
	exporter := NewExporter(NewBuilder(testResolver(), 0), NewExportLedger())
	req := ExportRequest{
		CardName: "Visa",
		Intent:   params.IntentReturnToCard,
		Items:    []model.SourceItem{{ID: "a1", Amount: amount("10")}},
	}

	result := exporter.Export(req)
	if result.Status != StatusNoParameters || !errors.Is(result.Err(), ErrNoParameters) {
		t.Errorf("status = %s, expected %s", result.Status, StatusNoParameters)
	}
	if result.Dropped != 1 {
		t.Errorf("dropped = %d, expected 1", result.Dropped)
	}
	if exporter.Ledger().IsExported("a1") {
		t.Error("dropped item must not be marked exported")
	}
}

func TestExportGroupedOnlyNewItems(t *testing.T) {
	ledger := NewExportLedger()
	ledger.MarkExported("a1")
	exporter := NewExporter(NewBuilder(testResolver(), 0), ledger)

	result := exporter.Export(ExportRequest{
		CardName: "Visa",
		Intent:   params.IntentAllocationSettlement,
		Mode:     ModeGrouped,
		Items: []model.SourceItem{
			{ID: "a1", Kind: model.KindAllocation, Description: "old", Amount: amount("5")},
			{ID: "a2", Kind: model.KindAllocation, Description: "new", Amount: amount("30")},
			{ID: "a3", Kind: model.KindAllocation, Description: "newer", Amount: amount("70")},
		},
	})

	if result.Status != StatusOK || len(result.Entries) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Eligible != 2 || len(result.Items) != 2 {
		t.Errorf("eligible = %d, items = %d; expected 2 and 2", result.Eligible, len(result.Items))
	}
	if !result.Entries[0].Amount.Equal(amount("100")) {
		t.Errorf("amount = %s, expected 100", result.Entries[0].Amount)
	}
	if ledger.Len() != 3 {
		t.Errorf("ledger has %d ids, expected 3", ledger.Len())
	}
}

func TestExportLedgerReset(t *testing.T) {
	l := NewExportLedger()
	l.MarkExported("b", "a")
	if got := l.IDs(); len(got) != 2 || got[0] != "a" {
		t.Errorf("IDs() = %v", got)
	}
	l.Reset()
	if l.IsExported("a") || l.Len() != 0 {
		t.Error("expected empty ledger after reset")
	}
}
