package kafkax

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter builds a hash-balanced writer. Messages must carry their own Topic.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}
