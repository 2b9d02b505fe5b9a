package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// EventMeta identifies a message in logs: its event id and type headers plus the partition key.
type EventMeta struct {
	EventID   string
	EventType string
	Key       string
}

// ExtractEventMeta falls back to the key for a missing event_id and the topic for a missing event_type.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	meta := EventMeta{
		EventID:   HeaderValue(msg.Headers, "event_id"),
		EventType: HeaderValue(msg.Headers, "event_type"),
		Key:       string(msg.Key),
	}
	if meta.EventID == "" {
		meta.EventID = meta.Key
	}
	if meta.EventType == "" {
		meta.EventType = msg.Topic
	}
	return meta
}

// LogArgs renders the meta as slog key/value pairs.
func (m EventMeta) LogArgs() []any {
	return []any{"event_id", m.EventID, "event_type", m.EventType, "key", m.Key}
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
