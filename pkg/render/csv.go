// Package render serializes accounting entries into the delimited import
// format and source items into a paginated report.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ControlToken is the literal first line expected by the accounting import.
const ControlToken = "1322"

// HeaderLine names the columns of the ledger lines.
const HeaderLine = "Conta;Subconta;Fundo;Departamento;Restricao;Valor;Referencia;Historico"

// referenceFlag is the fixed value of the Referencia column.
const referenceFlag = "N"

// transactionTag prefixes narratives of entries built from statement transactions.
const transactionTag = "Cartão Corporativo"

var hundred = decimal.NewFromInt(100)

// WriteLedgerCSV writes the entries in the delimited import format: a UTF-8
// byte-order mark, the control line, the header line, then a debit and a
// credit line per entry. The column order is a compatibility contract with
// the importing software.
func WriteLedgerCSV(w io.Writer, entries []model.AccountingEntry) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	lines := make([]string, 0, 2+2*len(entries))
	lines = append(lines, ControlToken, HeaderLine)
	for _, e := range entries {
		debit, credit := LedgerLines(e)
		lines = append(lines, debit, credit)
	}

	if _, err := io.WriteString(bw, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write ledger lines: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("failed to flush ledger lines: %w", err)
	}
	return nil
}

// LedgerLines renders the debit and credit lines of one entry.
func LedgerLines(e model.AccountingEntry) (debit, credit string) {
	cents := AmountInCents(e.Amount)
	narrative := quote(Narrative(e))

	debit = strings.Join([]string{
		e.DebitAccount, e.DebitSubaccount, e.Fund, e.DebitDepartment, e.DebitRestriction,
		fmt.Sprintf("%d", cents), referenceFlag, narrative,
	}, ";")
	credit = strings.Join([]string{
		e.CreditAccount, e.CreditSubaccount, e.Fund, e.CreditDepartment, e.CreditRestriction,
		fmt.Sprintf("%d", -cents), referenceFlag, narrative,
	}, ";")
	return debit, credit
}

// AmountInCents converts an amount to integer cents, rounding half away from zero.
func AmountInCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Narrative returns the narrative as exported. Entries built from statement
// transactions are tagged with the card label and the entry date; entries
// built from allocations keep their text.
func Narrative(e model.AccountingEntry) string {
	if e.Origin == model.OriginTransaction {
		return fmt.Sprintf("%s - %s - %s", transactionTag, e.Date, e.Narrative)
	}
	return e.Narrative
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
