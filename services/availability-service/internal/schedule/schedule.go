// Package schedule assembles working hours, breaks, recurrence and strategy into one availability
// configuration, validates it as a whole and derives its capacity.
package schedule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

type Priority string

const (
	PriorityEmergency Priority = "emergency"
	PriorityNormal    Priority = "normal"
	PriorityLow       Priority = "low"
)

func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityEmergency, PriorityNormal, PriorityLow:
		return p, nil
	case "":
		return PriorityNormal, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Config is the availability configuration supplied by the caller on every call.
// BufferMinutes is carried through unchanged; no capacity formula consumes it.
type Config struct {
	WorkingHours  interval.Interval
	Breaks        []availability.Break
	Recurrence    recurrence.Mode
	Strategy      capacity.Strategy
	BufferMinutes int
	Priority      Priority
}

// Clone copies the break list so the result shares no mutable state with c.
func (c Config) Clone() Config {
	out := c
	out.Breaks = slices.Clone(c.Breaks)
	if w, ok := c.Recurrence.(recurrence.Weekly); ok {
		out.Recurrence = recurrence.Weekly{Days: slices.Clone(w.Days)}
	}
	return out
}

// Evaluation is the confirmed configuration plus everything derived from it.
type Evaluation struct {
	Config      Config
	Capacity    capacity.Result
	OpenWindows []interval.Interval
}

// Validate runs every rule over the whole configuration and returns all violations.
func Validate(c Config) validation.Errors {
	var errs validation.Errors
	errs = append(errs, availability.Validate(c.WorkingHours, c.Breaks)...)
	errs = append(errs, recurrence.Validate(c.Recurrence)...)
	errs = append(errs, capacity.ValidateStrategy(c.Strategy)...)
	if c.BufferMinutes < 0 {
		errs = append(errs, validation.Error{
			Kind:    validation.InvalidBuffer,
			Field:   "buffer_minutes",
			Message: fmt.Sprintf("buffer must not be negative, got %d", c.BufferMinutes),
		})
	}
	switch c.Priority {
	case PriorityEmergency, PriorityNormal, PriorityLow:
	default:
		errs = append(errs, validation.Error{
			Kind:    validation.InvalidPriority,
			Field:   "priority",
			Message: fmt.Sprintf("unknown priority %q", c.Priority),
		})
	}
	return errs
}

// Evaluate validates c and, only when it is valid, computes capacity from scratch.
// c is never modified; the returned Evaluation holds its own copy.
func Evaluate(c Config) (Evaluation, validation.Errors) {
	if errs := Validate(c); len(errs) > 0 {
		return Evaluation{}, errs
	}
	confirmed := c.Clone()
	return Evaluation{
		Config:      confirmed,
		Capacity:    capacity.Compute(confirmed.WorkingHours, confirmed.Breaks, confirmed.Strategy),
		OpenWindows: availability.OpenWindows(confirmed.WorkingHours, confirmed.Breaks),
	}, nil
}
