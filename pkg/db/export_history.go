package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExportRecord represents one generated import file.
type ExportRecord struct {
	ID          int64
	CardName    string
	Competency  string
	Intent      string
	EntryCount  int
	AmountCents int64
	FilePath    string
	ExportedAt  time.Time
}

// ExportHistory keeps the audit trail of generated files.
// It is informational only; it never decides whether an item can be exported again.
type ExportHistory struct {
	conn *Connection
}

// NewExportHistory creates a new ExportHistory instance.
func NewExportHistory(conn *Connection) *ExportHistory {
	return &ExportHistory{conn: conn}
}

// RecordExport records a generated file.
func (h *ExportHistory) RecordExport(ctx context.Context, record ExportRecord) error {
	query := `
		INSERT INTO export_history (card_name, competency, intent, entry_count, amount_cents, file_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := h.conn.Exec(ctx, query,
		record.CardName,
		record.Competency,
		record.Intent,
		record.EntryCount,
		record.AmountCents,
		record.FilePath,
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}

	return nil
}

// GetExports retrieves the exports of a card for one competency, newest first.
func (h *ExportHistory) GetExports(ctx context.Context, cardName, competency string) ([]ExportRecord, error) {
	query := `
		SELECT id, card_name, competency, intent, entry_count, amount_cents, file_path, exported_at
		FROM export_history
		WHERE card_name = ? AND competency = ?
		ORDER BY id DESC
	`

	rows, err := h.conn.Query(ctx, query, cardName, competency)
	if err != nil {
		return nil, fmt.Errorf("failed to get exports: %w", err)
	}
	defer rows.Close()

	var records []ExportRecord
	for rows.Next() {
		var record ExportRecord
		if err := rows.Scan(
			&record.ID,
			&record.CardName,
			&record.Competency,
			&record.Intent,
			&record.EntryCount,
			&record.AmountCents,
			&record.FilePath,
			&record.ExportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exports: %w", err)
	}

	return records, nil
}

// Stats represents storage statistics.
type Stats struct {
	TotalCards      int
	TotalParameters int
	TotalIgnored    int
	TotalExports    int
	LastExport      sql.NullString
}

// GetStats retrieves storage statistics.
func GetStats(ctx context.Context, conn *Connection) (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int
		label string
	}{
		{`SELECT COUNT(*) FROM cards`, &stats.TotalCards, "card"},
		{`SELECT COUNT(*) FROM accounting_parameters`, &stats.TotalParameters, "parameter"},
		{`SELECT COUNT(*) FROM ignored_items`, &stats.TotalIgnored, "ignored item"},
		{`SELECT COUNT(*) FROM export_history`, &stats.TotalExports, "export"},
	}
	for _, c := range counts {
		if err := conn.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.label, err)
		}
	}

	// MAX over an empty table yields NULL, not ErrNoRows
	err := conn.QueryRow(ctx, `SELECT MAX(exported_at) FROM export_history`).Scan(&stats.LastExport)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last export time: %w", err)
	}

	return &stats, nil
}
