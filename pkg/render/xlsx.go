package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Relatorio"

// WriteXLSX renders the report as a spreadsheet: the title block on top, and
// each page's header and rows separated by page breaks.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	row := 1
	for _, line := range r.TitleLines() {
		if err := f.SetCellValue(reportSheet, fmt.Sprintf("A%d", row), line); err != nil {
			return err
		}
		row++
	}
	if err := f.SetCellStyle(reportSheet, "A1", "A1", boldStyle); err != nil {
		return err
	}
	row++

	columns := r.Columns()
	for i, page := range r.Pages {
		for c, heading := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(reportSheet, cell, heading); err != nil {
				return err
			}
		}
		last, _ := excelize.CoordinatesToCellName(len(columns), row)
		if err := f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), last, boldStyle); err != nil {
			return err
		}
		row++

		for _, item := range page.Rows {
			values := []any{item.Date, item.Description, item.Amount.InexactFloat64()}
			if r.ShowBatch {
				values = append(values, item.Batch)
			}
			if err := setAmountRow(f, row, values, amountStyle); err != nil {
				return fmt.Errorf("failed to write page %d: %w", page.Number, err)
			}
			row++
		}

		if err := setAmountRow(f, row, []any{nil, "Subtotal", page.Subtotal.InexactFloat64()}, amountStyle); err != nil {
			return fmt.Errorf("failed to write page %d subtotal: %w", page.Number, err)
		}
		row++

		if i < len(r.Pages)-1 {
			if err := f.InsertPageBreak(reportSheet, fmt.Sprintf("A%d", row)); err != nil {
				return fmt.Errorf("failed to insert page break: %w", err)
			}
		}
	}

	total := []any{nil, fmt.Sprintf("Total (%d itens)", r.ItemCount), r.Total.InexactFloat64()}
	if err := setAmountRow(f, row, total, amountStyle); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// setAmountRow writes values from column A, skipping nils, and applies the
// amount style to column C.
func setAmountRow(f *excelize.File, row int, values []any, amountStyle int) error {
	for c, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reportSheet, cell, v); err != nil {
			return err
		}
	}
	cell := fmt.Sprintf("C%d", row)
	return f.SetCellStyle(reportSheet, cell, cell, amountStyle)
}
