package validation

import (
	"errors"
	"testing"
)

func TestErrorsErr(t *testing.T) {
	var none Errors
	if none.Err() != nil {
		t.Fatal("expected nil error for no violations")
	}

	es := Errors{
		{Kind: InvalidWorkingHours, Field: "working_hours", Message: "end must be after start"},
		{Kind: BreakOverlap, Field: "breaks", Breaks: []int{0, 2}, Message: "breaks overlap"},
	}
	err := es.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	var got Errors
	if !errors.As(err, &got) || len(got) != 2 {
		t.Fatalf("expected Errors with 2 entries, got %v", err)
	}
	want := "working_hours: end must be after start; breaks: breaks overlap"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestErrorsQueries(t *testing.T) {
	es := Errors{
		{Kind: BreakStartsBeforeWork, Breaks: []int{1}},
		{Kind: BreakOverlap, Breaks: []int{0, 1}},
		{Kind: BreakOverlap, Breaks: []int{1, 2}},
	}
	if !es.Has(BreakOverlap) || es.Has(InvalidWorkingHours) {
		t.Fatal("unexpected Has result")
	}
	if es.Count(BreakOverlap) != 2 {
		t.Fatalf("expected 2 overlaps, got %d", es.Count(BreakOverlap))
	}
	if n := len(es.ForBreak(1)); n != 3 {
		t.Fatalf("expected 3 violations for break 1, got %d", n)
	}
	if n := len(es.ForBreak(0)); n != 1 {
		t.Fatalf("expected 1 violation for break 0, got %d", n)
	}
	if !BreakEndsAfterWork.OutsideWorkingHours() || BreakOverlap.OutsideWorkingHours() {
		t.Fatal("unexpected OutsideWorkingHours classification")
	}
}
