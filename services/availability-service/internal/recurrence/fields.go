package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// Fields is the flat shape a form submits: every mode's auxiliary inputs side by side.
// Resolve turns it into a Mode; Switch clears the inputs a new mode does not own.
type Fields struct {
	Days   []time.Weekday
	Date   time.Time
	Reason string
}

func (f Fields) has(field Field) bool {
	switch field {
	case FieldDays:
		return len(f.Days) > 0
	case FieldDate:
		return !f.Date.IsZero()
	case FieldReason:
		return strings.TrimSpace(f.Reason) != ""
	}
	return false
}

var allFields = []Field{FieldDays, FieldDate, FieldReason}

// Resolve builds the Mode for kind. Fields owned by another mode are reported as FieldNotAllowed,
// and the mode's own requirement is checked as in Validate.
func Resolve(kind Kind, f Fields) (Mode, validation.Errors) {
	var errs validation.Errors
	required := RequiredFields(kind)
	for _, field := range allFields {
		if slices.Contains(required, field) || !f.has(field) {
			continue
		}
		errs = append(errs, validation.Error{
			Kind:    validation.FieldNotAllowed,
			Field:   "recurrence." + string(field),
			Message: fmt.Sprintf("%s is not used by %s recurrence", field, kind),
		})
	}

	var mode Mode
	switch kind {
	case KindDaily:
		mode = Daily{}
	case KindWeekly:
		mode = Weekly{Days: normalizeDays(f.Days)}
	case KindSpecificDate:
		mode = SpecificDate{Date: dateOnly(f.Date)}
	case KindLeave:
		mode = Leave{Reason: strings.TrimSpace(f.Reason)}
	default:
		return nil, append(errs, validation.Error{
			Kind:    validation.MissingRecurrence,
			Field:   "recurrence.mode",
			Message: fmt.Sprintf("unknown recurrence mode %q", kind),
		})
	}
	errs = append(errs, Validate(mode)...)
	return mode, errs
}

// Switch returns f with every field not owned by the target mode cleared.
func Switch(f Fields, to Kind) Fields {
	var out Fields
	for _, field := range RequiredFields(to) {
		switch field {
		case FieldDays:
			out.Days = slices.Clone(f.Days)
		case FieldDate:
			out.Date = f.Date
		case FieldReason:
			out.Reason = f.Reason
		}
	}
	return out
}

// FieldsOf flattens a Mode back into form fields.
func FieldsOf(m Mode) Fields {
	switch mode := m.(type) {
	case Weekly:
		return Fields{Days: slices.Clone(mode.Days)}
	case SpecificDate:
		return Fields{Date: mode.Date}
	case Leave:
		return Fields{Reason: mode.Reason}
	default:
		return Fields{}
	}
}

// normalizeDays sorts and de-duplicates, returning a fresh slice.
func normalizeDays(days []time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
