package schedule

import (
	"slices"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// Draft is an editing session over a Config. Every mutation re-runs Evaluate so Result and
// Errors always describe the current config. A Draft has a single owner and is not safe for
// concurrent use.
type Draft struct {
	cfg        Config
	fields     recurrence.Fields
	evaluation Evaluation
	errs       validation.Errors
}

func NewDraft(c Config) *Draft {
	d := &Draft{cfg: c.Clone(), fields: recurrence.FieldsOf(c.Recurrence)}
	d.refresh()
	return d
}

func (d *Draft) refresh() {
	d.evaluation, d.errs = Evaluate(d.cfg)
}

// Config returns a copy of the current configuration.
func (d *Draft) Config() Config { return d.cfg.Clone() }

// Valid reports whether the current configuration passed validation.
func (d *Draft) Valid() bool { return len(d.errs) == 0 }

func (d *Draft) Errors() validation.Errors { return slices.Clone(d.errs) }

// Evaluation is the zero value while the draft is invalid.
func (d *Draft) Evaluation() Evaluation { return d.evaluation }

func (d *Draft) SetWorkingHours(i interval.Interval) {
	d.cfg.WorkingHours = i
	d.refresh()
}

func (d *Draft) AddBreak(b availability.Break) {
	d.cfg.Breaks = append(slices.Clone(d.cfg.Breaks), b)
	d.refresh()
}

// UpdateBreak replaces break i; out-of-range indices are ignored.
func (d *Draft) UpdateBreak(i int, b availability.Break) {
	if i < 0 || i >= len(d.cfg.Breaks) {
		return
	}
	breaks := slices.Clone(d.cfg.Breaks)
	breaks[i] = b
	d.cfg.Breaks = breaks
	d.refresh()
}

func (d *Draft) RemoveBreak(i int) {
	if i < 0 || i >= len(d.cfg.Breaks) {
		return
	}
	d.cfg.Breaks = slices.Delete(slices.Clone(d.cfg.Breaks), i, i+1)
	d.refresh()
}

// SwitchRecurrence changes the mode and clears the auxiliary fields the new mode does not own.
// Errors from the switch (for example an empty weekday set) surface through Errors.
func (d *Draft) SwitchRecurrence(kind recurrence.Kind) {
	d.fields = recurrence.Switch(d.fields, kind)
	d.applyFields(kind)
}

// SetRecurrenceFields updates the auxiliary inputs of the current mode.
func (d *Draft) SetRecurrenceFields(f recurrence.Fields) {
	kind := recurrence.KindDaily
	if d.cfg.Recurrence != nil {
		kind = d.cfg.Recurrence.Kind()
	}
	d.fields = recurrence.Switch(f, kind)
	d.applyFields(kind)
}

func (d *Draft) applyFields(kind recurrence.Kind) {
	mode, _ := recurrence.Resolve(kind, d.fields)
	d.cfg.Recurrence = mode
	d.refresh()
}

func (d *Draft) SetStrategy(s capacity.Strategy) {
	d.cfg.Strategy = s
	d.refresh()
}

func (d *Draft) SetBufferMinutes(m int) {
	d.cfg.BufferMinutes = m
	d.refresh()
}

func (d *Draft) SetPriority(p Priority) {
	d.cfg.Priority = p
	d.refresh()
}
