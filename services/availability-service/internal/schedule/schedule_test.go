package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

func span(h1, m1, h2, m2 int) interval.Interval {
	return interval.New(interval.MustTimeOfDay(h1, m1), interval.MustTimeOfDay(h2, m2))
}

func baseConfig() Config {
	return Config{
		WorkingHours:  span(10, 0, 18, 0),
		Breaks:        []availability.Break{{Interval: span(13, 0, 14, 0), Reason: "Lunch"}},
		Recurrence:    recurrence.Weekly{Days: []time.Weekday{time.Monday, time.Wednesday}},
		Strategy:      capacity.FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1},
		BufferMinutes: 5,
		Priority:      PriorityNormal,
	}
}

func TestEvaluate_Valid(t *testing.T) {
	ev, errs := Evaluate(baseConfig())
	if len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}
	want := capacity.Result{AvailableSlotCount: 14, TotalAppointmentCapacity: 14, FormattedTimeRange: "10:00 AM - 6:00 PM"}
	if ev.Capacity != want {
		t.Fatalf("expected %+v, got %+v", want, ev.Capacity)
	}
	if len(ev.OpenWindows) != 2 {
		t.Fatalf("expected 2 open windows, got %v", ev.OpenWindows)
	}
	if ev.Config.BufferMinutes != 5 {
		t.Fatalf("buffer must be carried through, got %d", ev.Config.BufferMinutes)
	}
}

func TestValidate_PointerStrategy(t *testing.T) {
	cfg := baseConfig()
	cfg.Strategy = &capacity.FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}
	ev, errs := Evaluate(cfg)
	if len(errs) != 0 || ev.Capacity.TotalAppointmentCapacity != 14 {
		t.Fatalf("expected capacity 14, got %+v %v", ev.Capacity, errs)
	}

	cfg.Strategy = (*capacity.Flexible)(nil)
	if errs := Validate(cfg); !errs.Has(validation.MissingStrategy) {
		t.Fatalf("expected MissingStrategy for nil pointer, got %v", errs)
	}
}

func TestEvaluate_CollectsAcrossComponents(t *testing.T) {
	cfg := baseConfig()
	cfg.Breaks = append(cfg.Breaks, availability.Break{Interval: span(13, 30, 14, 30)})
	cfg.Recurrence = recurrence.Weekly{}
	cfg.Strategy = capacity.Flexible{MaxAppointmentsPerDay: 0}
	cfg.BufferMinutes = -1
	cfg.Priority = "urgent"

	_, errs := Evaluate(cfg)
	want := []validation.Kind{
		validation.BreakOverlap,
		validation.MissingWeekdays,
		validation.InvalidDailyCapacity,
		validation.InvalidBuffer,
		validation.InvalidPriority,
	}
	if !reflect.DeepEqual(errs.Kinds(), want) {
		t.Fatalf("expected %v, got %v", want, errs.Kinds())
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	cfg := baseConfig()
	before := cfg.Clone()
	ev, errs := Evaluate(cfg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	ev.Config.Breaks[0].Reason = "changed"
	if !reflect.DeepEqual(cfg, before) {
		t.Fatal("evaluation must not share break storage with the caller")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	cfg := baseConfig()
	a, errsA := Evaluate(cfg)
	b, errsB := Evaluate(cfg)
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(errsA, errsB) {
		t.Fatal("expected identical evaluations")
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority("Emergency"); err != nil || p != PriorityEmergency {
		t.Fatalf("expected emergency, got %q (%v)", p, err)
	}
	if p, err := ParsePriority(""); err != nil || p != PriorityNormal {
		t.Fatalf("expected normal default, got %q (%v)", p, err)
	}
	if _, err := ParsePriority("asap"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}
