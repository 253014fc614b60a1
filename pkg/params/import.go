package params

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// parameterColumns is the number of columns of a parameter import row:
// card, motive, debit/credit account, debit/credit subaccount, fund,
// debit/credit department, debit/credit restriction.
const parameterColumns = 11

// Encoding of an import file.
type Encoding string

const (
	EncodingLatin1 Encoding = "latin1"
	EncodingUTF8   Encoding = "utf8"
)

// ImportReport summarizes an import run.
type ImportReport struct {
	Accepted int
	Skipped  int
}

// ImportParameters reads parameter rows from a delimited file. The first line
// is a header. Rows are separated by ';' when the line contains one, ','
// otherwise. Only rows whose card is in knownCards are accepted.
func ImportParameters(r io.Reader, enc Encoding, knownCards []model.Card) ([]model.AccountingParameter, ImportReport, error) {
	known := make(map[string]bool, len(knownCards))
	for _, c := range knownCards {
		known[c.Name] = true
	}

	var result []model.AccountingParameter
	var report ImportReport

	err := scanRows(r, enc, func(cols []string) {
		if len(cols) < parameterColumns || !known[cols[0]] {
			report.Skipped++
			return
		}
		result = append(result, model.AccountingParameter{
			ID:                uuid.NewString(),
			CardName:          cols[0],
			Motive:            cols[1],
			DebitAccount:      cols[2],
			CreditAccount:     cols[3],
			DebitSubaccount:   cols[4],
			CreditSubaccount:  cols[5],
			Fund:              cols[6],
			DebitDepartment:   cols[7],
			CreditDepartment:  cols[8],
			DebitRestriction:  cols[9],
			CreditRestriction: cols[10],
		})
		report.Accepted++
	})
	if err != nil {
		return nil, report, err
	}

	return result, report, nil
}

// ImportCards reads name/subaccount rows. Cards already in existing, or
// repeated within the file, are skipped.
func ImportCards(r io.Reader, enc Encoding, existing []model.Card) ([]model.Card, ImportReport, error) {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Name] = true
	}

	var result []model.Card
	var report ImportReport

	err := scanRows(r, enc, func(cols []string) {
		if len(cols) < 2 || cols[0] == "" || cols[1] == "" || seen[cols[0]] {
			report.Skipped++
			return
		}
		seen[cols[0]] = true
		result = append(result, model.Card{Name: cols[0], Subaccount: cols[1]})
		report.Accepted++
	})
	if err != nil {
		return nil, report, err
	}

	return result, report, nil
}

// scanRows decodes r and calls fn with the cleaned columns of every non-blank
// line after the header.
func scanRows(r io.Reader, enc Encoding, fn func(cols []string)) error {
	var reader io.Reader = r
	switch enc {
	case EncodingLatin1, "":
		reader = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case EncodingUTF8:
	default:
		return fmt.Errorf("unsupported encoding %q", enc)
	}

	scanner := bufio.NewScanner(reader)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(splitRow(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	return nil
}

func splitRow(line string) []string {
	separator := ","
	if strings.Contains(line, ";") {
		separator = ";"
	}

	cols := strings.Split(line, separator)
	for i, c := range cols {
		cols[i] = strings.TrimSpace(strings.ReplaceAll(c, `"`, ""))
	}
	return cols
}
