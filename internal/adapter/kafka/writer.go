package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys attached to every shelter message.
const (
	HeaderPayloadHash = "payload_hash"
	HeaderBuiltAt     = "built_at"
)

// ShelterRecord is the message value: a canonical shelter plus its
// deterministic ID and the snapshot it belongs to.
type ShelterRecord struct {
	ID string `json:"id"`
	domain.Shelter
	PayloadHash string    `json:"payload_hash"`
	BuiltAt     time.Time `json:"built_at"`
}

// Writer publishes canonical shelters to a Kafka topic.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the shelters topic.
func NewWriter(brokers []string, topic string, batchSize int, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    batchSize,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Name identifies the loader in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadSnapshot publishes one message per shelter in a single WriteMessages
// call. Messages are keyed by shelter ID so that repeated snapshots land on
// the same partition per shelter.
func (w *Writer) LoadSnapshot(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Shelters) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Shelters))
	for i := range snap.Shelters {
		msg, err := serializeToMessage(snap.Shelters[i], snap.PayloadHash, snap.BuiltAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d shelters: %w", len(msgs), err)
	}
	w.metrics.MessagesProduced.Add(float64(len(msgs)))
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a shelter into a Kafka message.
func serializeToMessage(s domain.Shelter, payloadHash string, builtAt time.Time) (kafkago.Message, error) {
	id := domain.ShelterID(s)
	data, err := json.Marshal(ShelterRecord{
		ID:          id,
		Shelter:     s,
		PayloadHash: payloadHash,
		BuiltAt:     builtAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize shelter %s: %w", id, err)
	}
	return kafkago.Message{
		Key:   []byte(id),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderPayloadHash, Value: []byte(payloadHash)},
			{Key: HeaderBuiltAt, Value: []byte(builtAt.Format(time.RFC3339))},
		},
	}, nil
}
