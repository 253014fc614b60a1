package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/extraction"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ledger"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/reconcile"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/render"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

// ExportRecorder is notified of every file produced by an export.
type ExportRecorder interface {
	RecordExport(r *http.Request, s *session.Session, intent params.Intent, out session.ExportOutput)
}

// SessionsHandler handles session endpoints.
type SessionsHandler struct {
	manager  *Manager
	recorder ExportRecorder
	logger   *slog.Logger
}

// NewSessionsHandler creates a new SessionsHandler. recorder may be nil.
func NewSessionsHandler(manager *Manager, recorder ExportRecorder) *SessionsHandler {
	return &SessionsHandler{manager: manager, recorder: recorder, logger: manager.cfg.Logger}
}

// OpenSessionRequest is the body of PUT /sessions/{card}/{competency}.
type OpenSessionRequest struct {
	Transactions []model.Transaction `json:"transactions"`
	Allocations  []model.Allocation  `json:"allocations"`
}

// ReconciliationResponse is the body of GET /sessions/{card}/{competency}.
type ReconciliationResponse struct {
	CardName    string            `json:"cardName"`
	Competency  string            `json:"competency"`
	Result      reconcile.Result  `json:"result"`
	Summary     reconcile.Summary `json:"summary"`
	ExportedIDs []string          `json:"exportedIds"`
	PendingSync int               `json:"pendingSync"`

	Parameters []session.ParameterUse `json:"parameters"`
}

// ToggleIgnoreResponse is the body of POST /sessions/{card}/{competency}/ignore/{id}.
type ToggleIgnoreResponse struct {
	ID          string `json:"id"`
	Ignored     bool   `json:"ignored"`
	PendingSync int    `json:"pendingSync"`
}

// ExportRequest is the body of POST /sessions/{card}/{competency}/export.
type ExportRequest struct {
	Intent string   `json:"intent"`
	Mode   string   `json:"mode,omitempty"`
	IDs    []string `json:"ids,omitempty"`
}

// ExportStatusResponse describes an export that produced no file.
type ExportStatusResponse struct {
	ErrorResponse
	Status   ledger.Status `json:"status"`
	Eligible int           `json:"eligible"`
	Dropped  int           `json:"dropped"`
}

// sessionParams extracts the card name and competency from the route.
func sessionParams(r *http.Request) (string, model.Competency, error) {
	cardName, err := url.PathUnescape(chi.URLParam(r, "card"))
	if err != nil || strings.TrimSpace(cardName) == "" {
		return "", model.Competency{}, fmt.Errorf("invalid card name")
	}

	competency, err := model.ParseCompetency(chi.URLParam(r, "competency"))
	if err != nil {
		return "", model.Competency{}, err
	}

	return cardName, competency, nil
}

func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	cardName, competency, err := sessionParams(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return nil, false
	}

	s, err := h.manager.Get(cardName, competency)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Session not found; PUT the extracted documents first")
		return nil, false
	}
	return s, true
}

// Open handles PUT /sessions/{card}/{competency}.
func (h *SessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	cardName, competency, err := sessionParams(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if err := extraction.ValidateTransactions(req.Transactions); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := extraction.NormalizeAllocations(req.Allocations); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.manager.Open(r.Context(), cardName, competency, req.Transactions, req.Allocations)
	if err != nil {
		h.logger.Error("Failed to open session", "card", cardName, "competency", competency.String(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to open session")
		return
	}

	writeJSON(w, http.StatusCreated, h.reconciliation(s))
}

// Get handles GET /sessions/{card}/{competency}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.reconciliation(s))
}

func (h *SessionsHandler) reconciliation(s *session.Session) ReconciliationResponse {
	result := s.Recompute()

	exported := []string{}
	for _, item := range session.Candidates(result) {
		if s.IsExported(item.ID) {
			exported = append(exported, item.ID)
		}
	}

	return ReconciliationResponse{
		CardName:    s.CardName(),
		Competency:  s.Competency().String(),
		Result:      result,
		Summary:     result.Summary(),
		ExportedIDs: exported,
		PendingSync: s.PendingSync(),
		Parameters:  s.ParameterUses(),
	}
}

// ToggleIgnore handles POST /sessions/{card}/{competency}/ignore/{id}.
func (h *SessionsHandler) ToggleIgnore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid item ID")
		return
	}

	ignored := s.ToggleIgnore(r.Context(), id)
	writeJSON(w, http.StatusOK, ToggleIgnoreResponse{
		ID:          id,
		Ignored:     ignored,
		PendingSync: s.PendingSync(),
	})
}

// Export handles POST /sessions/{card}/{competency}/export.
// On success the response body is the import file itself.
func (h *SessionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	intent, err := params.ParseIntent(req.Intent)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	mode := ledger.ModePerItem
	switch ledger.Mode(req.Mode) {
	case "", ledger.ModePerItem:
	case ledger.ModeGrouped:
		mode = ledger.ModeGrouped
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid mode")
		return
	}

	out, err := s.Export(session.ExportRequest{Intent: intent, Mode: mode, IDs: req.IDs})
	if err != nil {
		status := http.StatusInternalServerError
		code := "server_error"
		switch {
		case errors.Is(err, ledger.ErrNothingToExport):
			status, code = http.StatusConflict, "nothing_to_export"
		case errors.Is(err, ledger.ErrNoParameters):
			status, code = http.StatusUnprocessableEntity, "no_parameters"
		}
		writeJSON(w, status, ExportStatusResponse{
			ErrorResponse: ErrorResponse{Error: code, ErrorDescription: err.Error()},
			Status:        out.Status,
			Eligible:      out.Eligible,
			Dropped:       out.Dropped,
		})
		return
	}

	if h.recorder != nil {
		h.recorder.RecordExport(r, s, intent, out)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FileName))
	w.Header().Set("X-Export-Entries", fmt.Sprint(len(out.Entries)))
	w.Header().Set("X-Export-Dropped", fmt.Sprint(out.Dropped))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// ResetExports handles DELETE /sessions/{card}/{competency}/exports.
func (h *SessionsHandler) ResetExports(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.ResetExports()
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /sessions/{card}/{competency}/report?format=text|xlsx&ids=a,b.
func (h *SessionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var ids []string
	if raw := query.Get("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	report := s.Report(session.ReportRequest{Heading: query.Get("heading"), IDs: ids})

	var buf bytes.Buffer
	switch format := query.Get("format"); format {
	case "", "text":
		if err := render.WriteText(&buf, report); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case "xlsx":
		if err := render.WriteXLSX(&buf, report); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid format")
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
