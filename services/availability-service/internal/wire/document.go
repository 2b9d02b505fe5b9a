// Package wire is the JSON/YAML shape of an availability configuration as it crosses the HTTP,
// gRPC, CLI and Kafka boundaries.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/schedule"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// ErrMalformed marks documents that cannot be read as a configuration at all: bad time syntax,
// unknown recurrence mode, strategy type or priority. These are transport errors, not validation
// results.
var ErrMalformed = errors.New("malformed availability document")

const dateLayout = "2006-01-02"

type Document struct {
	WorkingHours  Span       `json:"working_hours" mapstructure:"working_hours"`
	Breaks        []Break    `json:"breaks,omitempty" mapstructure:"breaks"`
	Recurrence    Recurrence `json:"recurrence" mapstructure:"recurrence"`
	Strategy      Strategy   `json:"strategy" mapstructure:"strategy"`
	BufferMinutes int        `json:"buffer_minutes" mapstructure:"buffer_minutes"`
	Priority      string     `json:"priority,omitempty" mapstructure:"priority"`
}

type Span struct {
	Start string `json:"start" mapstructure:"start"`
	End   string `json:"end" mapstructure:"end"`
}

type Break struct {
	Start  string `json:"start" mapstructure:"start"`
	End    string `json:"end" mapstructure:"end"`
	Reason string `json:"reason,omitempty" mapstructure:"reason"`
}

// Recurrence carries every mode's auxiliary fields side by side; only the ones owned by Mode may
// be set.
type Recurrence struct {
	Mode   string   `json:"mode" mapstructure:"mode"`
	Days   []string `json:"days,omitempty" mapstructure:"days"`
	Date   string   `json:"date,omitempty" mapstructure:"date"`
	Reason string   `json:"reason,omitempty" mapstructure:"reason"`
}

type Strategy struct {
	Type                   string `json:"type" mapstructure:"type"`
	SlotDurationMinutes    int    `json:"slot_duration_minutes,omitempty" mapstructure:"slot_duration_minutes"`
	MaxAppointmentsPerSlot int    `json:"max_appointments_per_slot,omitempty" mapstructure:"max_appointments_per_slot"`
	MaxAppointmentsPerDay  int    `json:"max_appointments_per_day,omitempty" mapstructure:"max_appointments_per_day"`
}

// Decode reads one JSON document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// Config converts the document. A non-nil error wraps ErrMalformed. The returned validation
// errors are the ones only visible at this layer (recurrence fields set for another mode); the
// caller still runs schedule.Validate over the config.
func (d Document) Config() (schedule.Config, validation.Errors, error) {
	var cfg schedule.Config

	wh, err := d.WorkingHours.interval("working_hours")
	if err != nil {
		return schedule.Config{}, nil, err
	}
	cfg.WorkingHours = wh

	for i, b := range d.Breaks {
		iv, err := Span{Start: b.Start, End: b.End}.interval(fmt.Sprintf("breaks[%d]", i))
		if err != nil {
			return schedule.Config{}, nil, err
		}
		cfg.Breaks = append(cfg.Breaks, availability.Break{Interval: iv, Reason: strings.TrimSpace(b.Reason)})
	}

	mode, fieldErrs, err := d.Recurrence.mode()
	if err != nil {
		return schedule.Config{}, nil, err
	}
	cfg.Recurrence = mode

	cfg.Strategy, err = d.Strategy.strategy()
	if err != nil {
		return schedule.Config{}, nil, err
	}

	cfg.Priority, err = schedule.ParsePriority(d.Priority)
	if err != nil {
		return schedule.Config{}, nil, fmt.Errorf("%w: priority: %v", ErrMalformed, err)
	}
	cfg.BufferMinutes = d.BufferMinutes
	return cfg, fieldErrs, nil
}

func (s Span) interval(field string) (interval.Interval, error) {
	start, err := interval.ParseTimeOfDay(s.Start)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("%w: %s.start: %v", ErrMalformed, field, err)
	}
	end, err := interval.ParseTimeOfDay(s.End)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("%w: %s.end: %v", ErrMalformed, field, err)
	}
	return interval.New(start, end), nil
}

// mode returns a nil Mode for an empty mode string so schedule validation reports it as missing.
func (r Recurrence) mode() (recurrence.Mode, validation.Errors, error) {
	if strings.TrimSpace(r.Mode) == "" {
		return nil, nil, nil
	}
	kind, err := recurrence.ParseKind(r.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: recurrence.mode: %v", ErrMalformed, err)
	}
	f, err := r.Fields()
	if err != nil {
		return nil, nil, err
	}
	mode, errs := recurrence.Resolve(kind, f)
	var fieldErrs validation.Errors
	for _, e := range errs {
		if e.Kind == validation.FieldNotAllowed {
			fieldErrs = append(fieldErrs, e)
		}
	}
	return mode, fieldErrs, nil
}

// Fields parses the auxiliary inputs regardless of mode.
func (r Recurrence) Fields() (recurrence.Fields, error) {
	var f recurrence.Fields
	for _, raw := range r.Days {
		wd, err := recurrence.ParseWeekday(raw)
		if err != nil {
			return recurrence.Fields{}, fmt.Errorf("%w: recurrence.days: %v", ErrMalformed, err)
		}
		f.Days = append(f.Days, wd)
	}
	if strings.TrimSpace(r.Date) != "" {
		date, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return recurrence.Fields{}, fmt.Errorf("%w: recurrence.date: %v", ErrMalformed, err)
		}
		f.Date = date
	}
	f.Reason = r.Reason
	return f, nil
}

// RecurrenceFromFields is the inverse of Recurrence.Fields.
func RecurrenceFromFields(kind recurrence.Kind, f recurrence.Fields) Recurrence {
	out := Recurrence{Mode: string(kind), Reason: f.Reason}
	for _, wd := range f.Days {
		out.Days = append(out.Days, recurrence.WeekdayName(wd))
	}
	if !f.Date.IsZero() {
		out.Date = f.Date.Format(dateLayout)
	}
	return out
}

func (s Strategy) strategy() (capacity.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "":
		return nil, nil
	case capacity.NameFixedSlots:
		return capacity.FixedSlots{
			SlotDurationMinutes:    s.SlotDurationMinutes,
			MaxAppointmentsPerSlot: s.MaxAppointmentsPerSlot,
		}, nil
	case capacity.NameFlexible:
		return capacity.Flexible{MaxAppointmentsPerDay: s.MaxAppointmentsPerDay}, nil
	default:
		return nil, fmt.Errorf("%w: strategy.type: unknown strategy %q", ErrMalformed, s.Type)
	}
}

// FromConfig renders a configuration back into its document form.
func FromConfig(c schedule.Config) Document {
	doc := Document{
		WorkingHours:  Span{Start: c.WorkingHours.Start.String(), End: c.WorkingHours.End.String()},
		BufferMinutes: c.BufferMinutes,
		Priority:      string(c.Priority),
	}
	for _, b := range c.Breaks {
		doc.Breaks = append(doc.Breaks, Break{Start: b.Start.String(), End: b.End.String(), Reason: b.Reason})
	}
	if c.Recurrence != nil {
		doc.Recurrence = RecurrenceFromFields(c.Recurrence.Kind(), recurrence.FieldsOf(c.Recurrence))
	}
	switch st := capacity.Normalize(c.Strategy).(type) {
	case capacity.FixedSlots:
		doc.Strategy = Strategy{
			Type:                   st.Name(),
			SlotDurationMinutes:    st.SlotDurationMinutes,
			MaxAppointmentsPerSlot: st.MaxAppointmentsPerSlot,
		}
	case capacity.Flexible:
		doc.Strategy = Strategy{Type: st.Name(), MaxAppointmentsPerDay: st.MaxAppointmentsPerDay}
	}
	return doc
}

// RequiredFieldNames lists the wire names of the fields a recurrence mode needs.
func RequiredFieldNames(kind recurrence.Kind) []string {
	fields := recurrence.RequiredFields(kind)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}
