package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

type Kind string

const (
	KindDaily        Kind = "daily"
	KindWeekly       Kind = "weekly"
	KindSpecificDate Kind = "specific_date"
	KindLeave        Kind = "leave"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindDaily, KindWeekly, KindSpecificDate, KindLeave:
		return k, nil
	default:
		return "", fmt.Errorf("unknown recurrence mode %q", raw)
	}
}

// Field names an auxiliary input owned by one recurrence mode.
type Field string

const (
	FieldDays   Field = "days"
	FieldDate   Field = "date"
	FieldReason Field = "reason"
)

// Mode is exactly one of Daily, Weekly, SpecificDate or Leave.
type Mode interface {
	Kind() Kind
	isMode()
}

type Daily struct{}

type Weekly struct {
	Days []time.Weekday
}

// SpecificDate applies to a single calendar day. Only the date part of Date is meaningful.
type SpecificDate struct {
	Date time.Time
}

type Leave struct {
	Reason string
}

func (Daily) Kind() Kind        { return KindDaily }
func (Weekly) Kind() Kind       { return KindWeekly }
func (SpecificDate) Kind() Kind { return KindSpecificDate }
func (Leave) Kind() Kind        { return KindLeave }

func (Daily) isMode()        {}
func (Weekly) isMode()       {}
func (SpecificDate) isMode() {}
func (Leave) isMode()        {}

// RequiredFields lists the auxiliary fields a mode needs; daily needs none.
func RequiredFields(k Kind) []Field {
	switch k {
	case KindWeekly:
		return []Field{FieldDays}
	case KindSpecificDate:
		return []Field{FieldDate}
	case KindLeave:
		return []Field{FieldReason}
	default:
		return nil
	}
}

// Validate checks the mode's own required field.
func Validate(m Mode) validation.Errors {
	switch mode := m.(type) {
	case nil:
		return validation.Errors{{
			Kind:    validation.MissingRecurrence,
			Field:   "recurrence",
			Message: "a recurrence mode is required",
		}}
	case Daily:
		return nil
	case Weekly:
		if len(mode.Days) == 0 {
			return validation.Errors{{
				Kind:    validation.MissingWeekdays,
				Field:   "recurrence.days",
				Message: "weekly recurrence needs at least one weekday",
			}}
		}
		return nil
	case SpecificDate:
		if mode.Date.IsZero() {
			return validation.Errors{{
				Kind:    validation.MissingDate,
				Field:   "recurrence.date",
				Message: "specific-date recurrence needs a date",
			}}
		}
		return nil
	case Leave:
		if strings.TrimSpace(mode.Reason) == "" {
			return validation.Errors{{
				Kind:    validation.MissingLeaveReason,
				Field:   "recurrence.reason",
				Message: "leave needs a reason",
			}}
		}
		return nil
	default:
		panic(fmt.Sprintf("recurrence: unknown mode %T", m))
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func ParseWeekday(raw string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", raw)
	}
	return wd, nil
}

// WeekdayName is the short lowercase form used on the wire.
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String()[:3])
}
