package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/audit"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

const validBody = `{
  "working_hours": {"start": "10:00", "end": "18:00"},
  "breaks": [{"start": "13:00", "end": "14:00", "reason": "Lunch"}],
  "recurrence": {"mode": "daily"},
  "strategy": {"type": "fixed_slots", "slot_duration_minutes": 30, "max_appointments_per_slot": 1}
}`

const overlappingBody = `{
  "working_hours": {"start": "10:00", "end": "18:00"},
  "breaks": [{"start": "13:00", "end": "14:00"}, {"start": "13:30", "end": "14:30"}],
  "recurrence": {"mode": "daily"},
  "strategy": {"type": "fixed_slots", "slot_duration_minutes": 30, "max_appointments_per_slot": 1}
}`

type fakePublisher struct{ count int }

func (f *fakePublisher) PublishConfirmed(context.Context, evaluation.Outcome) error {
	f.count++
	return nil
}

type fakeLister struct {
	entries    []audit.Entry
	err        error
	businessID string
	limit      int
}

func (f *fakeLister) ListRecent(_ context.Context, businessID string, limit int) ([]audit.Entry, error) {
	f.businessID, f.limit = businessID, limit
	return f.entries, f.err
}

func newMux(pub evaluation.Publisher, lister EvaluationLister) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var opts []evaluation.Option
	if pub != nil {
		opts = append(opts, evaluation.WithPublisher(pub))
	}
	mux := http.NewServeMux()
	New(evaluation.NewService(logger, opts...), lister, logger).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("X-Business-Id", "biz-1")
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	return rw
}

func TestEvaluate(t *testing.T) {
	rw := do(t, newMux(nil, nil), http.MethodPost, "/api/v1/availability/evaluate", validBody)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var res wire.EvaluationResult
	if err := json.Unmarshal(rw.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if res.Capacity.AvailableSlotCount != 14 || res.Capacity.TotalAppointmentCapacity != 14 {
		t.Fatalf("expected 14/14, got %+v", res.Capacity)
	}
	if res.Capacity.FormattedTimeRange != "10:00 AM - 6:00 PM" {
		t.Fatalf("unexpected range %q", res.Capacity.FormattedTimeRange)
	}
	if len(res.OpenWindows) != 2 || res.OpenWindows[0].End != "13:00" {
		t.Fatalf("unexpected open windows %+v", res.OpenWindows)
	}
}

func TestEvaluate_InvalidIs422(t *testing.T) {
	rw := do(t, newMux(nil, nil), http.MethodPost, "/api/v1/availability/evaluate", overlappingBody)
	if rw.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rw.Code)
	}
	var res wire.ValidationResult
	if err := json.Unmarshal(rw.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if res.Valid || len(res.Errors) != 1 || res.Errors[0].Kind != validation.BreakOverlap {
		t.Fatalf("expected a single overlap error, got %+v", res)
	}
	if len(res.Errors[0].Breaks) != 2 || res.Errors[0].Breaks[0] != 0 || res.Errors[0].Breaks[1] != 1 {
		t.Fatalf("overlap must name both breaks, got %v", res.Errors[0].Breaks)
	}
	if len(res.BreakRows) != 2 || res.BreakRows[1].Index != 1 || res.BreakRows[1].OutsideWorkingHours {
		t.Fatalf("expected one row per overlapping break, got %+v", res.BreakRows)
	}
}

func TestEvaluate_MalformedIs400(t *testing.T) {
	mux := newMux(nil, nil)
	if rw := do(t, mux, http.MethodPost, "/api/v1/availability/evaluate", `{"working_hours":`); rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rw.Code)
	}
	body := strings.Replace(validBody, `"10:00"`, `"10h"`, 1)
	if rw := do(t, mux, http.MethodPost, "/api/v1/availability/evaluate", body); rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad time, got %d", rw.Code)
	}
	if rw := do(t, mux, http.MethodGet, "/api/v1/availability/evaluate", ""); rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}

func TestValidate(t *testing.T) {
	mux := newMux(nil, nil)
	rw := do(t, mux, http.MethodPost, "/api/v1/availability/validate", validBody)
	if rw.Code != http.StatusOK || !strings.Contains(rw.Body.String(), `"valid":true`) || !strings.Contains(rw.Body.String(), `"errors":[]`) {
		t.Fatalf("unexpected response %d %s", rw.Code, rw.Body.String())
	}
	rw = do(t, mux, http.MethodPost, "/api/v1/availability/validate", overlappingBody)
	if rw.Code != http.StatusOK || !strings.Contains(rw.Body.String(), `"break_overlap"`) {
		t.Fatalf("validation results are always 200, got %d %s", rw.Code, rw.Body.String())
	}
}

func TestConfirm(t *testing.T) {
	pub := &fakePublisher{}
	mux := newMux(pub, nil)

	rw := do(t, mux, http.MethodPost, "/api/v1/availability/confirm", validBody)
	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rw.Code, rw.Body.String())
	}
	if pub.count != 1 {
		t.Fatalf("expected one event, got %d", pub.count)
	}

	rw = do(t, mux, http.MethodPost, "/api/v1/availability/confirm", overlappingBody)
	if rw.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rw.Code)
	}
	if pub.count != 1 {
		t.Fatal("invalid configurations must not be published")
	}
}

func TestRequiredFields(t *testing.T) {
	mux := newMux(nil, nil)
	rw := do(t, mux, http.MethodGet, "/api/v1/availability/recurrence/fields?mode=weekly", "")
	if rw.Code != http.StatusOK || !strings.Contains(rw.Body.String(), `"required_fields":["days"]`) {
		t.Fatalf("unexpected response %d %s", rw.Code, rw.Body.String())
	}
	rw = do(t, mux, http.MethodGet, "/api/v1/availability/recurrence/fields?mode=daily", "")
	if !strings.Contains(rw.Body.String(), `"required_fields":[]`) {
		t.Fatalf("daily needs no fields, got %s", rw.Body.String())
	}
	rw = do(t, mux, http.MethodGet, "/api/v1/availability/recurrence/fields?mode=yearly", "")
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestSwitchRecurrence(t *testing.T) {
	body := `{"to": "leave", "fields": {"mode": "weekly", "days": ["mon"], "reason": "Conference"}}`
	rw := do(t, newMux(nil, nil), http.MethodPost, "/api/v1/availability/recurrence/switch", body)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var out wire.Recurrence
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if out.Mode != "leave" || out.Reason != "Conference" || len(out.Days) != 0 {
		t.Fatalf("expected only the leave reason to survive, got %+v", out)
	}
}

func TestListEvaluations(t *testing.T) {
	if rw := do(t, newMux(nil, nil), http.MethodGet, "/api/v1/availability/evaluations", ""); rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without audit, got %d", rw.Code)
	}

	lister := &fakeLister{entries: []audit.Entry{{ID: "e1", Valid: true}}}
	rw := do(t, newMux(nil, lister), http.MethodGet, "/api/v1/availability/evaluations?limit=500", "")
	if rw.Code != http.StatusOK || !strings.Contains(rw.Body.String(), `"id":"e1"`) {
		t.Fatalf("unexpected response %d %s", rw.Code, rw.Body.String())
	}
	if lister.limit != 50 || lister.businessID != "biz-1" {
		t.Fatalf("expected clamped limit and business scope, got %d %q", lister.limit, lister.businessID)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/evaluations", nil)
	noBusiness := httptest.NewRecorder()
	newMux(nil, lister).ServeHTTP(noBusiness, req)
	if noBusiness.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Business-Id, got %d", noBusiness.Code)
	}

	if rw := do(t, newMux(nil, lister), http.MethodGet, "/api/v1/availability/evaluations?limit=x", ""); rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}

	lister.err = errors.New("db down")
	if rw := do(t, newMux(nil, lister), http.MethodGet, "/api/v1/availability/evaluations", ""); rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
}
