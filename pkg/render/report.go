package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// DefaultPageSize is the number of rows per report page.
const DefaultPageSize = 40

// ReportTitle is the title block printed on every page.
type ReportTitle struct {
	Heading     string
	CardName    string
	Competency  model.Competency
	GeneratedAt time.Time
}

// ReportOptions controls pagination and optional columns.
type ReportOptions struct {
	PageSize  int
	ShowBatch bool
}

// ReportRow is one source item.
type ReportRow struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	Batch       string
}

// ReportPage is one page of rows.
type ReportPage struct {
	Number   int
	Rows     []ReportRow
	Subtotal decimal.Decimal
}

// Report is a paginated list of source items.
type Report struct {
	Title     ReportTitle
	ShowBatch bool
	Pages     []ReportPage
	Total     decimal.Decimal
	ItemCount int
}

// BuildReport lays out one row per source item across pages. An empty item
// list yields a single empty page so the title block is still rendered.
func BuildReport(title ReportTitle, items []model.SourceItem, opts ReportOptions) Report {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	report := Report{
		Title:     title,
		ShowBatch: opts.ShowBatch,
		Total:     decimal.Zero,
		ItemCount: len(items),
	}

	for start := 0; start < len(items) || start == 0; start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}

		page := ReportPage{Number: len(report.Pages) + 1, Subtotal: decimal.Zero}
		for _, item := range items[start:end] {
			page.Rows = append(page.Rows, ReportRow{
				Date:        item.Date,
				Description: item.Description,
				Amount:      item.Amount,
				Batch:       item.Batch,
			})
			page.Subtotal = page.Subtotal.Add(item.Amount)
		}
		report.Total = report.Total.Add(page.Subtotal)
		report.Pages = append(report.Pages, page)

		if end == len(items) {
			break
		}
	}

	return report
}

// Columns returns the column headings of the report.
func (r Report) Columns() []string {
	cols := []string{"Data", "Descrição", "Valor"}
	if r.ShowBatch {
		cols = append(cols, "Lote")
	}
	return cols
}

// TitleLines returns the title block.
func (r Report) TitleLines() []string {
	heading := r.Title.Heading
	if heading == "" {
		heading = "Relatório de Conciliação"
	}
	return []string{
		heading,
		"Cartão: " + r.Title.CardName,
		"Competência: " + r.Title.Competency.Label(),
		"Gerado em: " + r.Title.GeneratedAt.Format("02/01/2006 15:04"),
	}
}

// WriteText renders the report as plain text, one page after another,
// separated by form feeds.
func WriteText(w io.Writer, r Report) error {
	for i, page := range r.Pages {
		if i > 0 {
			if _, err := io.WriteString(w, "\f\n"); err != nil {
				return err
			}
		}

		var sb strings.Builder
		for _, line := range r.TitleLines() {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Página %d de %d\n\n", page.Number, len(r.Pages)))
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(r.Columns(), "\t"))
		for _, row := range page.Rows {
			cols := []string{row.Date, row.Description, FormatBRL(row.Amount)}
			if r.ShowBatch {
				cols = append(cols, row.Batch)
			}
			fmt.Fprintln(tw, strings.Join(cols, "\t"))
		}
		fmt.Fprintf(tw, "\tSubtotal\t%s\n", FormatBRL(page.Subtotal))
		if page.Number == len(r.Pages) {
			fmt.Fprintf(tw, "\tTotal (%d itens)\t%s\n", r.ItemCount, FormatBRL(r.Total))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to render page %d: %w", page.Number, err)
		}
	}
	return nil
}

// FormatBRL formats an amount as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), frac)
}
