// Package kafka publishes refreshed closure records to a Kafka topic so
// downstream consumers see refreshes without polling the service.
package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

// Publisher produces closure records to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and publishes a full record set in a single
// WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, records []domain.ClosureRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	p.logger.Info("published closure records", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a ClosureRecord into a Kafka message keyed by
// a deterministic hash of its identity fields, so replays of the same
// closure land on the same partition and dedupe downstream.
func serializeToMessage(record domain.ClosureRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize closure record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(recordKey(record)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cause", Value: []byte(record.Cause)},
		},
	}, nil
}

// recordKey hashes roads|cause|start|end into a short stable key.
func recordKey(record domain.ClosureRecord) string {
	input := fmt.Sprintf("%s|%s|%s|%s",
		strings.Join(record.RoadNames, " "), record.Cause, record.Start, record.End)
	hash := sha256.Sum256([]byte(input))
	return "closure-" + hex.EncodeToString(hash[:8])
}
