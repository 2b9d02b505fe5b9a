// Package validation holds the error taxonomy shared by the availability, capacity, recurrence and
// schedule validators. Violations are collected and returned together, never short-circuited.
package validation

import (
	"strings"
)

type Kind string

const (
	InvalidWorkingHours   Kind = "invalid_working_hours"
	BreakStartsBeforeWork Kind = "break_starts_before_work"
	BreakEndsAfterWork    Kind = "break_ends_after_work"
	InvalidBreakRange     Kind = "invalid_break_range"
	BreakOverlap          Kind = "break_overlap"

	MissingRecurrence  Kind = "missing_recurrence"
	MissingWeekdays    Kind = "missing_weekdays"
	MissingDate        Kind = "missing_date"
	MissingLeaveReason Kind = "missing_leave_reason"
	FieldNotAllowed    Kind = "field_not_allowed"

	MissingStrategy      Kind = "missing_strategy"
	InvalidSlotDuration  Kind = "invalid_slot_duration"
	InvalidSlotCapacity  Kind = "invalid_slot_capacity"
	InvalidDailyCapacity Kind = "invalid_daily_capacity"

	InvalidBuffer   Kind = "invalid_buffer"
	InvalidPriority Kind = "invalid_priority"

	OutOfRange Kind = "out_of_range"
)

// OutsideWorkingHours groups the two containment kinds.
func (k Kind) OutsideWorkingHours() bool {
	return k == BreakStartsBeforeWork || k == BreakEndsAfterWork
}

// Error is one violation. Breaks lists the indices of the offending break entries so a caller can
// flag the exact rows; Field is a dotted path into the configuration document.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Breaks  []int  `json:"breaks,omitempty"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors is an ordered set of violations. A nil or empty Errors means valid.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns es as an error, or nil when there are no violations.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (es Errors) Has(kind Kind) bool {
	return es.Count(kind) > 0
}

func (es Errors) Count(kind Kind) int {
	n := 0
	for _, e := range es {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ForBreak returns the violations that reference break index i.
func (es Errors) ForBreak(i int) Errors {
	var out Errors
	for _, e := range es {
		for _, b := range e.Breaks {
			if b == i {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Kinds lists the kinds in order, one per violation.
func (es Errors) Kinds() []Kind {
	out := make([]Kind, 0, len(es))
	for _, e := range es {
		out = append(out, e.Kind)
	}
	return out
}
