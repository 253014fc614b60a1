package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ledger"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testEntry() model.AccountingEntry {
	return model.AccountingEntry{
		Date:              "15/03/24",
		Narrative:         `Almoço "cliente"`,
		Amount:            amount("123.45"),
		DebitAccount:      "2139009",
		CreditAccount:     "2139090",
		DebitSubaccount:   "767902",
		CreditSubaccount:  "767903",
		Fund:              "10",
		DebitDepartment:   "1310001",
		CreditDepartment:  "1310002",
		DebitRestriction:  "0A",
		CreditRestriction: "0B",
		Origin:            model.OriginAllocation,
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, []model.AccountingEntry{testEntry()}); err != nil {
		t.Fatalf("WriteLedgerCSV() error = %v", err)
	}

	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("output does not start with a UTF-8 BOM: % x", data[:3])
	}

	lines := strings.Split(string(data[3:]), "\n")
	want := []string{
		"1322",
		"Conta;Subconta;Fundo;Departamento;Restricao;Valor;Referencia;Historico",
		`2139009;767902;10;1310001;0A;12345;N;"Almoço ""cliente"""`,
		`2139090;767903;10;1310002;0B;-12345;N;"Almoço ""cliente"""`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, expected %d:\n%s", len(lines), len(want), string(data))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, expected %q", i, lines[i], want[i])
		}
	}
}

func TestNarrativeTagsTransactions(t *testing.T) {
	e := testEntry()
	e.Origin = model.OriginTransaction
	e.Narrative = "UBER TRIP"

	if got := Narrative(e); got != "Cartão Corporativo - 15/03/24 - UBER TRIP" {
		t.Errorf("Narrative() = %q", got)
	}

	debit, _ := LedgerLines(e)
	if !strings.HasSuffix(debit, `;N;"Cartão Corporativo - 15/03/24 - UBER TRIP"`) {
		t.Errorf("debit line = %q", debit)
	}
}

func TestAmountInCents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"100.00", 10000},
		{"100.004", 10000},
		{"100.005", 10001},
		{"0.1", 10},
		{"1234.567", 123457},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := AmountInCents(amount(tt.amount)); got != tt.want {
				t.Errorf("AmountInCents(%s) = %d, expected %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestGroupedExportSerializesToCents(t *testing.T) {
	resolver := params.NewResolver([]model.AccountingParameter{
		{CardName: "Visa", Motive: "Alocação", DebitAccount: "D", CreditAccount: "C"},
	}, nil)
	builder := ledger.NewBuilder(resolver, 0)

	entry, ok := builder.BuildGrouped("Visa", params.IntentAllocationSettlement, []model.SourceItem{
		{ID: "a1", Kind: model.KindAllocation, Description: "one", Amount: amount("30.00")},
		{ID: "a2", Kind: model.KindAllocation, Description: "two", Amount: amount("70.00")},
	})
	if !ok {
		t.Fatal("expected grouped entry")
	}

	debit, credit := LedgerLines(entry)
	if !strings.Contains(debit, ";10000;N;") {
		t.Errorf("debit line = %q, expected 10000 cents", debit)
	}
	if !strings.Contains(credit, ";-10000;N;") {
		t.Errorf("credit line = %q, expected -10000 cents", credit)
	}
}

func TestWriteLedgerCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := string(bytes.TrimPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF})); got != ControlToken+"\n"+HeaderLine {
		t.Errorf("empty export = %q", got)
	}
}

func TestZeroAmountCreditLine(t *testing.T) {
	e := testEntry()

	for _, a := range []string{"0", "0.00", "0.004", "-0.004"} {
		t.Run(a, func(t *testing.T) {
			e.Amount = amount(a)
			debit, credit := LedgerLines(e)

			debitCols := strings.Split(debit, ";")
			creditCols := strings.Split(credit, ";")
			if debitCols[5] != "0" {
				t.Errorf("debit amount = %q, expected 0", debitCols[5])
			}
			// zero is written unsigned on the credit side, never "-0"
			if creditCols[5] != "0" {
				t.Errorf("credit amount = %q, expected 0", creditCols[5])
			}
		})
	}
}
