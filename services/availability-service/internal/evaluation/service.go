// Package evaluation runs availability documents through validation and capacity computation and
// fans confirmed results out to the audit log and the event stream.
package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/schedule"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

// ErrInvalid is returned by Confirm when the document does not validate.
var ErrInvalid = errors.New("availability configuration is invalid")

// Outcome is one evaluation as it is audited and published.
type Outcome struct {
	ID          string
	BusinessID  string
	Valid       bool
	Confirmed   bool
	Document    wire.Document
	Capacity    capacity.Result
	OpenWindows []interval.Interval
	Errors      validation.Errors
	EvaluatedAt time.Time
}

// Result renders a valid outcome in its response form.
func (o Outcome) Result() wire.EvaluationResult {
	res := wire.EvaluationResult{
		EvaluationID: o.ID,
		Config:       o.Document,
		Capacity:     o.Capacity,
		OpenWindows:  make([]wire.Window, 0, len(o.OpenWindows)),
	}
	for _, w := range o.OpenWindows {
		res.OpenWindows = append(res.OpenWindows, wire.Window{
			Start:   w.Start.String(),
			End:     w.End.String(),
			Minutes: interval.Duration(w),
		})
	}
	return res
}

type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

type Publisher interface {
	PublishConfirmed(ctx context.Context, o Outcome) error
}

type Service struct {
	logger    *slog.Logger
	recorder  Recorder
	publisher Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

// WithRecorder enables the evaluation audit log.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithPublisher enables confirmation events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		tracer: otel.Tracer("availability-service/evaluation"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks a document without computing capacity. The error is non-nil only for malformed
// documents.
func (s *Service) Validate(ctx context.Context, doc wire.Document) (validation.Errors, error) {
	_, span := s.tracer.Start(ctx, "availability.validate")
	defer span.End()

	cfg, fieldErrs, err := doc.Config()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed document")
		return nil, err
	}
	errs := append(fieldErrs, schedule.Validate(cfg)...)
	span.SetAttributes(
		attribute.Bool("availability.valid", len(errs) == 0),
		attribute.Int("availability.error_count", len(errs)),
	)
	return errs, nil
}

// Evaluate validates the document and computes capacity when it is valid. The outcome is audited
// whether or not it is valid.
func (s *Service) Evaluate(ctx context.Context, businessID string, doc wire.Document) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "availability.evaluate")
	defer span.End()

	o, err := s.evaluate(ctx, span, businessID, doc)
	if err != nil {
		return Outcome{}, err
	}
	s.record(ctx, o)
	return o, nil
}

// Confirm evaluates the document and, when valid, publishes it as the provider's confirmed
// configuration. Invalid documents return the outcome together with ErrInvalid.
func (s *Service) Confirm(ctx context.Context, businessID string, doc wire.Document) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "availability.confirm")
	defer span.End()

	o, err := s.evaluate(ctx, span, businessID, doc)
	if err != nil {
		return Outcome{}, err
	}
	if !o.Valid {
		s.record(ctx, o)
		return o, ErrInvalid
	}

	o.Confirmed = true
	if s.publisher != nil {
		if err := s.publisher.PublishConfirmed(ctx, o); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "publish failed")
			s.logger.Error("confirmation publish failed", "err", err, "evaluation_id", o.ID)
			return Outcome{}, err
		}
	}
	s.record(ctx, o)
	s.logger.Info("availability confirmed",
		"evaluation_id", o.ID,
		"business_id", o.BusinessID,
		"total_capacity", o.Capacity.TotalAppointmentCapacity,
	)
	return o, nil
}

func (s *Service) evaluate(ctx context.Context, span trace.Span, businessID string, doc wire.Document) (Outcome, error) {
	cfg, fieldErrs, err := doc.Config()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed document")
		return Outcome{}, err
	}

	o := Outcome{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		EvaluatedAt: s.now().UTC(),
	}
	if len(fieldErrs) > 0 {
		o.Errors = append(fieldErrs, schedule.Validate(cfg)...)
		o.Document = doc
	} else {
		ev, errs := schedule.Evaluate(cfg)
		o.Errors = errs
		if len(errs) == 0 {
			o.Document = wire.FromConfig(ev.Config)
			o.Capacity = ev.Capacity
			o.OpenWindows = ev.OpenWindows
		} else {
			o.Document = doc
		}
	}
	o.Valid = len(o.Errors) == 0

	span.SetAttributes(
		attribute.String("availability.evaluation_id", o.ID),
		attribute.Bool("availability.valid", o.Valid),
		attribute.Int("availability.error_count", len(o.Errors)),
		attribute.String("availability.strategy", doc.Strategy.Type),
		attribute.Int("availability.slot_count", o.Capacity.AvailableSlotCount),
		attribute.Int("availability.total_capacity", o.Capacity.TotalAppointmentCapacity),
	)
	s.logger.Debug("availability evaluated", "evaluation_id", o.ID, "valid", o.Valid, "errors", len(o.Errors))
	return o, nil
}

// record is best effort: a failing audit store never fails the request.
func (s *Service) record(ctx context.Context, o Outcome) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, o); err != nil {
		s.logger.Warn("evaluation audit failed", "err", err, "evaluation_id", o.ID)
	}
}
