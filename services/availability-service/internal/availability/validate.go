package availability

import (
	"fmt"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// Break is a sub-interval of working hours during which nothing can be booked.
type Break struct {
	interval.Interval
	Reason string `json:"reason,omitempty"`
}

// Validate checks working hours and breaks and returns every violation in one pass:
// working hours first, then each break in input order, then overlapping pairs (i < j).
func Validate(workingHours interval.Interval, breaks []Break) validation.Errors {
	var errs validation.Errors

	workValid := workingHours.Valid()
	if !workValid {
		errs = append(errs, validation.Error{
			Kind:    validation.InvalidWorkingHours,
			Field:   "working_hours",
			Message: fmt.Sprintf("end %s must be after start %s", workingHours.End, workingHours.Start),
		})
	}

	for i, b := range breaks {
		field := fmt.Sprintf("breaks[%d]", i)
		if !b.Valid() {
			errs = append(errs, validation.Error{
				Kind:    validation.InvalidBreakRange,
				Field:   field,
				Breaks:  []int{i},
				Message: fmt.Sprintf("end %s must be after start %s", b.End, b.Start),
			})
		}
		// Containment is meaningless against an inverted working window.
		if !workValid {
			continue
		}
		if b.Start.Before(workingHours.Start) {
			errs = append(errs, validation.Error{
				Kind:    validation.BreakStartsBeforeWork,
				Field:   field + ".start",
				Breaks:  []int{i},
				Message: fmt.Sprintf("break starts at %s, before working hours start at %s", b.Start, workingHours.Start),
			})
		}
		if b.End.After(workingHours.End) {
			errs = append(errs, validation.Error{
				Kind:    validation.BreakEndsAfterWork,
				Field:   field + ".end",
				Breaks:  []int{i},
				Message: fmt.Sprintf("break ends at %s, after working hours end at %s", b.End, workingHours.End),
			})
		}
	}

	// Break lists are single digits in practice; pairwise is fine.
	for i := 0; i < len(breaks); i++ {
		if !breaks[i].Valid() {
			continue
		}
		for j := i + 1; j < len(breaks); j++ {
			if !breaks[j].Valid() {
				continue
			}
			if interval.Overlaps(breaks[i].Interval, breaks[j].Interval) {
				errs = append(errs, validation.Error{
					Kind:   validation.BreakOverlap,
					Field:  "breaks",
					Breaks: []int{i, j},
					Message: fmt.Sprintf("break %d (%s) overlaps break %d (%s)",
						i, breaks[i].Interval, j, breaks[j].Interval),
				})
			}
		}
	}

	return errs
}

// TotalBreakMinutes sums break durations. Callers validate first, so breaks are disjoint.
func TotalBreakMinutes(breaks []Break) int {
	total := 0
	for _, b := range breaks {
		total += interval.Duration(b.Interval)
	}
	return total
}
