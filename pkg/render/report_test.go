package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

func testItems(n int) []model.SourceItem {
	items := make([]model.SourceItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, model.SourceItem{
			ID:          fmt.Sprintf("a%d", i),
			Kind:        model.KindAllocation,
			Date:        "10/03/24",
			Description: fmt.Sprintf("Item %d", i),
			Amount:      amount("10.50"),
			Batch:       fmt.Sprintf("L%d", i),
		})
	}
	return items
}

func testTitle() ReportTitle {
	return ReportTitle{
		CardName:    "Visa COAG",
		Competency:  model.Competency{Year: 2024, Month: time.March},
		GeneratedAt: time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestBuildReportPagination(t *testing.T) {
	tests := []struct {
		items     int
		pageSize  int
		wantPages int
		lastRows  int
	}{
		{0, 5, 1, 0},
		{5, 5, 1, 5},
		{6, 5, 2, 1},
		{12, 5, 3, 2},
		{3, 0, 1, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_items_%d_per_page", tt.items, tt.pageSize), func(t *testing.T) {
			r := BuildReport(testTitle(), testItems(tt.items), ReportOptions{PageSize: tt.pageSize})
			if len(r.Pages) != tt.wantPages {
				t.Fatalf("pages = %d, expected %d", len(r.Pages), tt.wantPages)
			}
			if got := len(r.Pages[len(r.Pages)-1].Rows); got != tt.lastRows {
				t.Errorf("last page rows = %d, expected %d", got, tt.lastRows)
			}
			if r.ItemCount != tt.items {
				t.Errorf("item count = %d, expected %d", r.ItemCount, tt.items)
			}
			wantTotal := amount("10.50").Mul(amount(fmt.Sprint(tt.items)))
			if !r.Total.Equal(wantTotal) {
				t.Errorf("total = %s, expected %s", r.Total, wantTotal)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	r := BuildReport(testTitle(), testItems(3), ReportOptions{PageSize: 2, ShowBatch: true})

	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Cartão: Visa COAG",
		"Competência: Mar / 2024",
		"Gerado em: 02/04/2024 09:30",
		"Página 1 de 2",
		"Página 2 de 2",
		"Lote",
		"L3",
		"R$ 31,50",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\f") != 1 {
		t.Errorf("expected one page separator")
	}
}

func TestWriteTextWithoutBatch(t *testing.T) {
	r := BuildReport(testTitle(), testItems(1), ReportOptions{})
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Lote") {
		t.Error("batch column rendered without ShowBatch")
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "R$ 0,00"},
		{"10.5", "R$ 10,50"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-99.9", "-R$ 99,90"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := FormatBRL(amount(tt.amount)); got != tt.want {
				t.Errorf("FormatBRL(%s) = %q, expected %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	r := BuildReport(testTitle(), testItems(3), ReportOptions{PageSize: 2, ShowBatch: true})

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, r); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen spreadsheet: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue(reportSheet, "A2")
	if title != "Cartão: Visa COAG" {
		t.Errorf("A2 = %q", title)
	}
	header, _ := f.GetCellValue(reportSheet, "D6")
	if header != "Lote" {
		t.Errorf("D6 = %q, expected batch header", header)
	}
	firstRow, _ := f.GetCellValue(reportSheet, "B7")
	if firstRow != "Item 1" {
		t.Errorf("B7 = %q, expected first item", firstRow)
	}
}

func TestWriteXLSXTotals(t *testing.T) {
	r := BuildReport(testTitle(), testItems(3), ReportOptions{PageSize: 2})

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, r); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen spreadsheet: %v", err)
	}
	defer f.Close()

	// title rows 1-4, blank, then header, two items and subtotal per page
	for cell, want := range map[string]string{
		"B9":  "Subtotal",
		"B12": "Subtotal",
		"B13": "Total (3 itens)",
	} {
		if got, _ := f.GetCellValue(reportSheet, cell); got != want {
			t.Errorf("%s = %q, expected %q", cell, got, want)
		}
	}
	if got, _ := f.GetCellValue(reportSheet, "A9"); got != "" {
		t.Errorf("A9 = %q, expected empty", got)
	}
}

func TestSetAmountRowReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		t.Fatal(err)
	}

	if err := setAmountRow(f, 0, []any{"x"}, 0); err == nil {
		t.Error("setAmountRow() with invalid row returned nil error")
	}
}
