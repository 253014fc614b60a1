package params

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

func TestImportParametersLatin1(t *testing.T) {
	csv := "Cartao;Motivo;ContaDebito;ContaCredito;SubcontaDebito;SubcontaCredito;Fundo;DepartamentoDebito;DepartamentoCredito;RestricaoDebito;RestricaoCredito\n" +
		"\"Visa COAG\";\"Lançar na prestação de contas\";2139009;2139090;767902;767902;10;1310001;1310001;0A;0A\n" +
		"\n" +
		"Unknown;Pendente;1;2;3;4;5;6;7;8;9\n" +
		"Visa COAG;short row\n"

	encoded, err := charmap.ISO8859_1.NewEncoder().String(csv)
	if err != nil {
		t.Fatal(err)
	}

	cards := []model.Card{{Name: "Visa COAG", Subaccount: "767902"}}
	got, report, err := ImportParameters(strings.NewReader(encoded), EncodingLatin1, cards)
	if err != nil {
		t.Fatalf("ImportParameters() error = %v", err)
	}

	if report.Accepted != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v, expected 1 accepted and 2 skipped", report)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(got))
	}

	p := got[0]
	if p.Motive != "Lançar na prestação de contas" {
		t.Errorf("motive = %q, accents not decoded", p.Motive)
	}
	if p.DebitAccount != "2139009" || p.CreditRestriction != "0A" || p.Fund != "10" {
		t.Errorf("unexpected columns: %+v", p)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
}

func TestImportCardsCommaSeparated(t *testing.T) {
	csv := "Nome,Subconta\nVisa COAG,767902\nAmex,111\nVisa COAG,999\nNoSub,\n"
	existing := []model.Card{{Name: "Amex", Subaccount: "111"}}

	got, report, err := ImportCards(bytes.NewBufferString(csv), EncodingUTF8, existing)
	if err != nil {
		t.Fatalf("ImportCards() error = %v", err)
	}

	if len(got) != 1 || got[0].Name != "Visa COAG" || got[0].Subaccount != "767902" {
		t.Errorf("ImportCards() = %+v", got)
	}
	if report.Skipped != 3 {
		t.Errorf("skipped = %d, expected 3", report.Skipped)
	}
}

func TestImportRejectsUnknownEncoding(t *testing.T) {
	if _, _, err := ImportCards(strings.NewReader("h\n"), Encoding("ebcdic"), nil); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}
