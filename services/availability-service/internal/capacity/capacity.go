// Package capacity derives bookable slot counts and appointment capacity from a validated
// working window, its breaks and a scheduling strategy.
package capacity

import (
	"fmt"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// Strategy is either FixedSlots or Flexible.
type Strategy interface {
	isStrategy()
	Name() string
}

// FixedSlots divides the day into equal slots, each admitting up to MaxAppointmentsPerSlot bookings.
type FixedSlots struct {
	SlotDurationMinutes    int
	MaxAppointmentsPerSlot int
}

// Flexible admits up to MaxAppointmentsPerDay bookings with no slot subdivision.
type Flexible struct {
	MaxAppointmentsPerDay int
}

func (FixedSlots) isStrategy() {}
func (Flexible) isStrategy()   {}

// Strategy names as they appear on the wire.
const (
	NameFixedSlots = "fixed_slots"
	NameFlexible   = "flexible"
)

func (FixedSlots) Name() string { return NameFixedSlots }
func (Flexible) Name() string   { return NameFlexible }

// Result is always derived from the inputs and never cached across changes.
type Result struct {
	AvailableSlotCount       int    `json:"available_slot_count"`
	TotalAppointmentCapacity int    `json:"total_appointment_capacity"`
	FormattedTimeRange       string `json:"formatted_time_range"`
}

// Normalize dereferences pointer variants. The pointer types satisfy Strategy through the value
// receivers, so callers may hand either form in; a nil pointer normalizes to nil.
func Normalize(s Strategy) Strategy {
	switch st := s.(type) {
	case *FixedSlots:
		if st == nil {
			return nil
		}
		return *st
	case *Flexible:
		if st == nil {
			return nil
		}
		return *st
	}
	return s
}

// ValidateStrategy enforces the per-variant invariants.
func ValidateStrategy(s Strategy) validation.Errors {
	var errs validation.Errors
	switch st := Normalize(s).(type) {
	case nil:
		errs = append(errs, validation.Error{
			Kind:    validation.MissingStrategy,
			Field:   "strategy",
			Message: "a scheduling strategy is required",
		})
	case FixedSlots:
		if st.SlotDurationMinutes <= 0 || st.SlotDurationMinutes > interval.MinutesPerDay {
			errs = append(errs, validation.Error{
				Kind:    validation.InvalidSlotDuration,
				Field:   "strategy.slot_duration_minutes",
				Message: fmt.Sprintf("slot duration must be in (0, %d], got %d", interval.MinutesPerDay, st.SlotDurationMinutes),
			})
		}
		if st.MaxAppointmentsPerSlot < 1 {
			errs = append(errs, validation.Error{
				Kind:    validation.InvalidSlotCapacity,
				Field:   "strategy.max_appointments_per_slot",
				Message: fmt.Sprintf("max appointments per slot must be at least 1, got %d", st.MaxAppointmentsPerSlot),
			})
		}
	case Flexible:
		if st.MaxAppointmentsPerDay < 1 {
			errs = append(errs, validation.Error{
				Kind:    validation.InvalidDailyCapacity,
				Field:   "strategy.max_appointments_per_day",
				Message: fmt.Sprintf("max appointments per day must be at least 1, got %d", st.MaxAppointmentsPerDay),
			})
		}
	default:
		errs = append(errs, validation.Error{
			Kind:    validation.MissingStrategy,
			Field:   "strategy",
			Message: fmt.Sprintf("unsupported scheduling strategy %T", s),
		})
	}
	return errs
}

// Compute expects inputs already accepted by availability.Validate and ValidateStrategy.
//
// In FixedSlots mode the slot count is (window - breaks) / slot duration, floored. Slots are not
// placed, so a slot that would straddle a break still counts. Flexible mode reports zero slots and
// the flat daily cap regardless of breaks.
func Compute(workingHours interval.Interval, breaks []availability.Break, strategy Strategy) Result {
	res := Result{FormattedTimeRange: interval.FormatRange(workingHours)}

	switch st := Normalize(strategy).(type) {
	case FixedSlots:
		if st.SlotDurationMinutes <= 0 {
			panic("capacity: compute called with non-positive slot duration")
		}
		available := interval.Duration(workingHours) - availability.TotalBreakMinutes(breaks)
		if available < 0 {
			available = 0
		}
		res.AvailableSlotCount = available / st.SlotDurationMinutes
		res.TotalAppointmentCapacity = res.AvailableSlotCount * st.MaxAppointmentsPerSlot
	case Flexible:
		res.AvailableSlotCount = 0
		res.TotalAppointmentCapacity = st.MaxAppointmentsPerDay
	default:
		panic(fmt.Sprintf("capacity: unknown strategy %T", strategy))
	}
	return res
}
