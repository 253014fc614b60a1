package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/exportfile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

// AuditLog records generated files.
type AuditLog interface {
	RecordExport(ctx context.Context, record db.ExportRecord) error
}

// FileRecorder keeps a copy of every exported file in the output directory
// and records it in the audit log. Failures are logged; the client still
// receives the file.
type FileRecorder struct {
	repo   exportfile.Repository
	audit  AuditLog
	logger *slog.Logger
}

// NewFileRecorder creates a FileRecorder. audit may be nil.
func NewFileRecorder(repo exportfile.Repository, audit AuditLog, logger *slog.Logger) *FileRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRecorder{repo: repo, audit: audit, logger: logger}
}

// RecordExport implements ExportRecorder.
func (f *FileRecorder) RecordExport(r *http.Request, s *session.Session, intent params.Intent, out session.ExportOutput) {
	path, err := f.repo.WriteExport(s.CardName(), s.Competency(), intent.FileSuffix(), out.Data)
	if err != nil {
		f.logger.Error("Failed to store export file", "card", s.CardName(), "error", err)
		return
	}

	if f.audit == nil {
		return
	}

	record := NewExportRecord(s.CardName(), s.Competency(), intent, out.Entries, path)
	if err := f.audit.RecordExport(r.Context(), record); err != nil {
		f.logger.Error("Failed to record export", "card", s.CardName(), "path", path, "error", err)
	}
}

// NewExportRecord summarizes an export for the audit log.
func NewExportRecord(cardName string, competency model.Competency, intent params.Intent, entries []model.AccountingEntry, path string) db.ExportRecord {
	var cents int64
	for _, e := range entries {
		cents += render.AmountInCents(e.Amount)
	}
	return db.ExportRecord{
		CardName:    cardName,
		Competency:  competency.String(),
		Intent:      string(intent),
		EntryCount:  len(entries),
		AmountCents: cents,
		FilePath:    path,
	}
}
