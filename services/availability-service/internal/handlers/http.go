package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/availcap/libs/httpx"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/audit"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

// EvaluationLister reads the audit log. A nil lister disables the listing endpoint.
type EvaluationLister interface {
	ListRecent(ctx context.Context, businessID string, limit int) ([]audit.Entry, error)
}

type Handler struct {
	svc    *evaluation.Service
	lister EvaluationLister
	logger *slog.Logger
}

func New(svc *evaluation.Service, lister EvaluationLister, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, lister: lister, logger: logger}
}

// Register mounts every availability route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/availability/validate", h.Validate)
	mux.HandleFunc("/api/v1/availability/evaluate", h.Evaluate)
	mux.HandleFunc("/api/v1/availability/confirm", h.Confirm)
	mux.HandleFunc("/api/v1/availability/recurrence/fields", h.RequiredFields)
	mux.HandleFunc("/api/v1/availability/recurrence/switch", h.SwitchRecurrence)
	mux.HandleFunc("/api/v1/availability/evaluations", h.ListEvaluations)
}

func businessIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Business-Id"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (wire.Document, bool) {
	doc, err := wire.Decode(r.Body)
	if err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return wire.Document{}, false
	}
	return doc, true
}

// failed writes the response for a service error and reports whether there was one.
func (h *Handler) failed(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, wire.ErrMalformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("availability request failed",
			"err", err,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
		)
		http.Error(w, "failed to process availability", http.StatusInternalServerError)
	}
	return true
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	errs, err := h.svc.Validate(r.Context(), doc)
	if h.failed(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, wire.NewValidationResult(errs))
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Evaluate(r.Context(), businessIDFromHeader(r), doc)
	if h.failed(w, r, err) {
		return
	}
	if !o.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, wire.NewValidationResult(o.Errors))
		return
	}
	writeJSON(w, http.StatusOK, o.Result())
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Confirm(r.Context(), businessIDFromHeader(r), doc)
	if errors.Is(err, evaluation.ErrInvalid) {
		writeJSON(w, http.StatusUnprocessableEntity, wire.NewValidationResult(o.Errors))
		return
	}
	if h.failed(w, r, err) {
		return
	}
	writeJSON(w, http.StatusCreated, o.Result())
}

func (h *Handler) RequiredFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	kind, err := recurrence.ParseKind(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, wire.RequiredFieldsResult{
		Mode:           string(kind),
		RequiredFields: wire.RequiredFieldNames(kind),
	})
}

// SwitchRecurrence returns the form fields after moving to another mode, with the inputs the new
// mode does not own cleared.
func (h *Handler) SwitchRecurrence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req wire.SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	kind, err := recurrence.ParseKind(req.To)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields, err := req.Fields.Fields()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, wire.RecurrenceFromFields(kind, recurrence.Switch(fields, kind)))
}

func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.lister == nil {
		http.Error(w, "evaluation audit is not configured", http.StatusServiceUnavailable)
		return
	}
	businessID := businessIDFromHeader(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}
	entries, err := h.lister.ListRecent(r.Context(), businessID, audit.ClampLimit(limit))
	if err != nil {
		h.logger.Error("list evaluations failed", "err", err)
		http.Error(w, "failed to list evaluations", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
