package capacity

import (
	"testing"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

func span(h1, m1, h2, m2 int) interval.Interval {
	return interval.New(interval.MustTimeOfDay(h1, m1), interval.MustTimeOfDay(h2, m2))
}

func TestCompute_FixedSlots(t *testing.T) {
	work := span(10, 0, 18, 0)
	breaks := []availability.Break{{Interval: span(13, 0, 14, 0), Reason: "Lunch"}}

	res := Compute(work, breaks, FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1})
	if res.AvailableSlotCount != 14 {
		t.Fatalf("expected 14 slots, got %d", res.AvailableSlotCount)
	}
	if res.TotalAppointmentCapacity != 14 {
		t.Fatalf("expected capacity 14, got %d", res.TotalAppointmentCapacity)
	}
	if res.FormattedTimeRange != "10:00 AM - 6:00 PM" {
		t.Fatalf("unexpected time range %q", res.FormattedTimeRange)
	}
}

func TestCompute_FixedSlotsMultiplePerSlotAndFloor(t *testing.T) {
	work := span(9, 0, 17, 0) // 480
	breaks := []availability.Break{
		{Interval: span(12, 0, 12, 45)}, // 45
		{Interval: span(15, 0, 15, 10)}, // 10
	}
	// 425 / 40 = 10 (floor)
	res := Compute(work, breaks, FixedSlots{SlotDurationMinutes: 40, MaxAppointmentsPerSlot: 3})
	if res.AvailableSlotCount != 10 || res.TotalAppointmentCapacity != 30 {
		t.Fatalf("expected 10 slots / 30 capacity, got %+v", res)
	}
}

func TestCompute_BreakStraddlingSlotStillCounts(t *testing.T) {
	// A 60-minute slot grid from 10:00 would be split by the 10:30-11:00 break, but only the
	// aggregate minutes matter: (180 - 30) / 60 = 2.
	work := span(10, 0, 13, 0)
	breaks := []availability.Break{{Interval: span(10, 30, 11, 0)}}
	res := Compute(work, breaks, FixedSlots{SlotDurationMinutes: 60, MaxAppointmentsPerSlot: 1})
	if res.AvailableSlotCount != 2 {
		t.Fatalf("expected 2 slots, got %d", res.AvailableSlotCount)
	}
}

func TestCompute_FlexibleIgnoresBreaks(t *testing.T) {
	strategy := Flexible{MaxAppointmentsPerDay: 20}
	cases := [][]availability.Break{
		nil,
		{{Interval: span(13, 0, 14, 0)}},
		{{Interval: span(10, 0, 12, 0)}, {Interval: span(12, 0, 17, 0)}},
	}
	for _, breaks := range cases {
		res := Compute(span(10, 0, 18, 0), breaks, strategy)
		if res.TotalAppointmentCapacity != 20 {
			t.Fatalf("expected capacity 20, got %d", res.TotalAppointmentCapacity)
		}
		if res.AvailableSlotCount != 0 {
			t.Fatalf("expected 0 slots in flexible mode, got %d", res.AvailableSlotCount)
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	work := span(8, 0, 16, 30)
	breaks := []availability.Break{{Interval: span(12, 0, 12, 30)}}
	strategy := FixedSlots{SlotDurationMinutes: 15, MaxAppointmentsPerSlot: 2}
	if Compute(work, breaks, strategy) != Compute(work, breaks, strategy) {
		t.Fatal("expected identical results for identical input")
	}
}

func TestCompute_UnknownStrategyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil strategy")
		}
	}()
	Compute(span(10, 0, 18, 0), nil, nil)
}

func TestValidateStrategy(t *testing.T) {
	cases := []struct {
		name string
		in   Strategy
		want []validation.Kind
	}{
		{"missing", nil, []validation.Kind{validation.MissingStrategy}},
		{"fixed ok", FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1}, nil},
		{"fixed whole day", FixedSlots{SlotDurationMinutes: 1440, MaxAppointmentsPerSlot: 1}, nil},
		{"fixed zero duration", FixedSlots{SlotDurationMinutes: 0, MaxAppointmentsPerSlot: 1}, []validation.Kind{validation.InvalidSlotDuration}},
		{"fixed too long", FixedSlots{SlotDurationMinutes: 1441, MaxAppointmentsPerSlot: 1}, []validation.Kind{validation.InvalidSlotDuration}},
		{"fixed both bad", FixedSlots{SlotDurationMinutes: -5, MaxAppointmentsPerSlot: 0}, []validation.Kind{validation.InvalidSlotDuration, validation.InvalidSlotCapacity}},
		{"flexible ok", Flexible{MaxAppointmentsPerDay: 1}, nil},
		{"flexible zero", Flexible{MaxAppointmentsPerDay: 0}, []validation.Kind{validation.InvalidDailyCapacity}},
		{"fixed pointer ok", &FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1}, nil},
		{"fixed pointer bad", &FixedSlots{SlotDurationMinutes: 0, MaxAppointmentsPerSlot: 1}, []validation.Kind{validation.InvalidSlotDuration}},
		{"flexible pointer zero", &Flexible{}, []validation.Kind{validation.InvalidDailyCapacity}},
		{"nil fixed pointer", (*FixedSlots)(nil), []validation.Kind{validation.MissingStrategy}},
	}
	for _, c := range cases {
		got := ValidateStrategy(c.in).Kinds()
		if len(got) != len(c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
			}
		}
	}
}

func TestCompute_PointerStrategies(t *testing.T) {
	work := span(10, 0, 18, 0)
	breaks := []availability.Break{{Interval: span(13, 0, 14, 0)}}

	got := Compute(work, breaks, &FixedSlots{SlotDurationMinutes: 30, MaxAppointmentsPerSlot: 1})
	if got.AvailableSlotCount != 14 || got.TotalAppointmentCapacity != 14 {
		t.Fatalf("expected 14/14, got %+v", got)
	}
	got = Compute(work, breaks, &Flexible{MaxAppointmentsPerDay: 20})
	if got.TotalAppointmentCapacity != 20 {
		t.Fatalf("expected 20, got %+v", got)
	}
}
