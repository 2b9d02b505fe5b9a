// Package events publishes confirmed availability configurations to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/availcap/libs/kafkax"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/capacity"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

const (
	EventTypeConfirmed = "availability.config.confirmed.v1"
	DefaultTopic       = EventTypeConfirmed
)

// ConfirmedPayload is the message body consumers of the confirmed-config topic receive.
type ConfirmedPayload struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EvaluationID string          `json:"evaluation_id"`
	BusinessID   string          `json:"business_id,omitempty"`
	Config       wire.Document   `json:"config"`
	Capacity     capacity.Result `json:"capacity"`
	ConfirmedAt  string          `json:"confirmed_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

type PublisherConfig struct {
	Brokers string
	Topic   string
}

// NewPublisher returns a publisher that drops events when no brokers are configured.
func NewPublisher(logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	p := &Publisher{topic: cfg.Topic, logger: logger}
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		logger.Warn("confirmation events disabled (no kafka brokers configured)")
		return p
	}
	p.writer = kafkax.NewWriter(brokers)
	return p
}

func (p *Publisher) Enabled() bool { return p.writer != nil }

func (p *Publisher) PublishConfirmed(ctx context.Context, o evaluation.Outcome) error {
	if p.writer == nil {
		return nil
	}
	msg, err := buildMessage(ctx, p.topic, o)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	args := append(kafkax.ExtractEventMeta(msg).LogArgs(), "evaluation_id", o.ID, "topic", p.topic)
	p.logger.Info("confirmation event published", args...)
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// buildMessage keys by business so one provider's confirmations stay ordered within a partition.
func buildMessage(ctx context.Context, topic string, o evaluation.Outcome) (kafka.Message, error) {
	eventID := uuid.NewString()
	confirmedAt := o.EvaluatedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now()
	}
	payload, err := json.Marshal(ConfirmedPayload{
		EventID:      eventID,
		EventType:    EventTypeConfirmed,
		EvaluationID: o.ID,
		BusinessID:   o.BusinessID,
		Config:       o.Document,
		Capacity:     o.Capacity,
		ConfirmedAt:  confirmedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return kafka.Message{}, err
	}

	key := o.BusinessID
	if key == "" {
		key = o.ID
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(EventTypeConfirmed)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	return msg, nil
}
