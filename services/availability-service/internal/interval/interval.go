package interval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every minute offset handled by this package. Schedules never span midnight.
const MinutesPerDay = 24 * 60

var (
	ErrOutOfRange    = errors.New("minute offset out of range")
	ErrInvalidTime   = errors.New("invalid time of day")
	ErrInvalidFormat = errors.New("time of day must be HH:MM")
)

// TimeOfDay is a wall-clock time within a single day. The zero value is 00:00.
type TimeOfDay struct {
	hour   int
	minute int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %d:%d", ErrInvalidTime, hour, minute)
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// MustTimeOfDay is NewTimeOfDay for constants and tests.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts "H:MM" or "HH:MM" in 24-hour notation.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	h, m, ok := strings.Cut(raw, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return TimeOfDay{}, fmt.Errorf("%w (got %q)", ErrInvalidFormat, raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w (got %q)", ErrInvalidFormat, raw)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w (got %q)", ErrInvalidFormat, raw)
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }

func (t TimeOfDay) Before(o TimeOfDay) bool { return ToMinutes(t) < ToMinutes(o) }
func (t TimeOfDay) After(o TimeOfDay) bool  { return ToMinutes(t) > ToMinutes(o) }

// String renders the 24-hour form used on the wire.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Format12h renders e.g. "9:05 AM"; midnight is "12:00 AM", noon is "12:00 PM".
func (t TimeOfDay) Format12h() string {
	suffix := "AM"
	if t.hour >= 12 {
		suffix = "PM"
	}
	h := t.hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.minute, suffix)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ToMinutes returns the offset from midnight.
func ToMinutes(t TimeOfDay) int {
	return t.hour*60 + t.minute
}

// FromMinutes is the inverse of ToMinutes for m in [0, MinutesPerDay).
func FromMinutes(m int) (TimeOfDay, error) {
	if m < 0 || m >= MinutesPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, m, MinutesPerDay)
	}
	return TimeOfDay{hour: m / 60, minute: m % 60}, nil
}

// Interval is the half-open range [Start, End) within one day.
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func New(start, end TimeOfDay) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Duration is End minus Start in minutes. It is only positive for valid intervals.
func Duration(i Interval) int {
	return ToMinutes(i.End) - ToMinutes(i.Start)
}

func Contains(outer, inner Interval) bool {
	return ToMinutes(inner.Start) >= ToMinutes(outer.Start) && ToMinutes(inner.End) <= ToMinutes(outer.End)
}

// Overlaps uses half-open semantics: intervals that only touch at an endpoint do not overlap.
func Overlaps(a, b Interval) bool {
	return ToMinutes(a.Start) < ToMinutes(b.End) && ToMinutes(b.Start) < ToMinutes(a.End)
}

// FormatRange renders "10:00 AM - 6:00 PM".
func FormatRange(i Interval) string {
	return i.Start.Format12h() + " - " + i.End.Format12h()
}
