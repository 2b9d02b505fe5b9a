package wire

import (
	"slices"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Errors    validation.Errors `json:"errors"`
	BreakRows []BreakRow        `json:"break_rows,omitempty"`
}

// BreakRow collects the violations that name one break entry, so a form can flag that row.
type BreakRow struct {
	Index               int               `json:"index"`
	Kinds               []validation.Kind `json:"kinds"`
	OutsideWorkingHours bool              `json:"outside_working_hours"`
}

func NewValidationResult(errs validation.Errors) ValidationResult {
	if errs == nil {
		errs = validation.Errors{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs, BreakRows: breakRows(errs)}
}

// breakRows groups errs by break index in ascending index order.
func breakRows(errs validation.Errors) []BreakRow {
	var indices []int
	for _, e := range errs {
		indices = append(indices, e.Breaks...)
	}
	slices.Sort(indices)
	indices = slices.Compact(indices)

	var rows []BreakRow
	for _, i := range indices {
		own := errs.ForBreak(i)
		row := BreakRow{Index: i, Kinds: own.Kinds()}
		for _, e := range own {
			if e.Kind.OutsideWorkingHours() {
				row.OutsideWorkingHours = true
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Window is one bookable stretch of the day.
type Window struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Minutes int    `json:"minutes"`
}

type EvaluationResult struct {
	EvaluationID string          `json:"evaluation_id"`
	Config       Document        `json:"config"`
	Capacity     capacity.Result `json:"capacity"`
	OpenWindows  []Window        `json:"open_windows"`
}

type RequiredFieldsResult struct {
	Mode           string   `json:"mode"`
	RequiredFields []string `json:"required_fields"`
}

// SwitchRequest asks to move a recurrence form to another mode.
type SwitchRequest struct {
	To     string     `json:"to"`
	Fields Recurrence `json:"fields"`
}
