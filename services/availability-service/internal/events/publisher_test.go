package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/availcap/libs/kafkax"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleOutcome() evaluation.Outcome {
	return evaluation.Outcome{
		ID:         "eval-1",
		BusinessID: "biz-1",
		Valid:      true,
		Confirmed:  true,
		Document: wire.Document{
			WorkingHours: wire.Span{Start: "10:00", End: "18:00"},
			Recurrence:   wire.Recurrence{Mode: "daily"},
			Strategy:     wire.Strategy{Type: "flexible", MaxAppointmentsPerDay: 20},
			Priority:     "normal",
		},
		Capacity:    capacity.Result{TotalAppointmentCapacity: 20, FormattedTimeRange: "10:00 AM - 6:00 PM"},
		EvaluatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func tracedContext(t *testing.T) context.Context {
	t.Helper()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage(tracedContext(t), "topic-a", sampleOutcome())
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}
	if msg.Topic != "topic-a" || string(msg.Key) != "biz-1" {
		t.Fatalf("unexpected topic/key %q %q", msg.Topic, msg.Key)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventType != EventTypeConfirmed || meta.EventID == "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if tp := kafkax.HeaderValue(msg.Headers, "traceparent"); !strings.Contains(tp, "4bf92f3577b34da6a3ce929d0e0e4736") {
		t.Fatalf("expected traceparent header, got %q", tp)
	}

	var payload ConfirmedPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload.EventID != meta.EventID || payload.EvaluationID != "eval-1" || payload.ConfirmedAt != "2026-03-02T09:00:00Z" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Capacity.TotalAppointmentCapacity != 20 {
		t.Fatalf("expected capacity 20, got %d", payload.Capacity.TotalAppointmentCapacity)
	}
}

func TestBuildMessage_KeyFallsBackToEvaluationID(t *testing.T) {
	o := sampleOutcome()
	o.BusinessID = ""
	msg, err := buildMessage(context.Background(), DefaultTopic, o)
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}
	if string(msg.Key) != "eval-1" {
		t.Fatalf("expected evaluation id key, got %q", msg.Key)
	}
}

func TestPublisher_DisabledWithoutBrokers(t *testing.T) {
	p := NewPublisher(testLogger(), PublisherConfig{})
	if p.Enabled() {
		t.Fatal("expected disabled publisher")
	}
	if err := p.PublishConfirmed(context.Background(), sampleOutcome()); err != nil {
		t.Fatalf("disabled publisher must be a no-op, got %v", err)
	}
}

func TestPublisher_WritesAndPropagatesErrors(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, topic: DefaultTopic, logger: testLogger()}
	if err := p.PublishConfirmed(context.Background(), sampleOutcome()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}

	w.err = errors.New("leader not available")
	if err := p.PublishConfirmed(context.Background(), sampleOutcome()); err == nil {
		t.Fatal("expected write error")
	}
}

func TestPublisher_LogsEventMeta(t *testing.T) {
	var buf bytes.Buffer
	p := &Publisher{writer: &fakeWriter{}, topic: DefaultTopic, logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	if err := p.PublishConfirmed(context.Background(), sampleOutcome()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"event_type":"` + EventTypeConfirmed + `"`, `"key":"biz-1"`, `"evaluation_id":"eval-1"`, `"event_id":"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log, got %s", want, out)
		}
	}
}
