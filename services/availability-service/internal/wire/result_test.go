package wire

import (
	"reflect"
	"testing"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

func TestNewValidationResult_GroupsByBreak(t *testing.T) {
	errs := validation.Errors{
		{Kind: validation.InvalidBuffer, Field: "buffer_minutes", Message: "negative"},
		{Kind: validation.BreakEndsAfterWork, Field: "breaks[2]", Breaks: []int{2}, Message: "late"},
		{Kind: validation.BreakOverlap, Field: "breaks", Breaks: []int{0, 2}, Message: "overlap"},
	}
	res := NewValidationResult(errs)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	want := []BreakRow{
		{Index: 0, Kinds: []validation.Kind{validation.BreakOverlap}},
		{Index: 2, Kinds: []validation.Kind{validation.BreakEndsAfterWork, validation.BreakOverlap}, OutsideWorkingHours: true},
	}
	if !reflect.DeepEqual(res.BreakRows, want) {
		t.Fatalf("expected %+v, got %+v", want, res.BreakRows)
	}
}

func TestNewValidationResult_Valid(t *testing.T) {
	res := NewValidationResult(nil)
	if !res.Valid || res.Errors == nil || res.BreakRows != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}
