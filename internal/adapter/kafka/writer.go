package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-weather-board/internal/config"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes normalized events to a Kafka topic.
// It implements board.EventPublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured events topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaEventsTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes every event of the batch and writes them in a single
// WriteMessages call. Events keyed by the same external ID land on the same
// partition, so consumers see updates in order.
func (p *Publisher) Publish(ctx context.Context, batch domain.EventBatch) error {
	if len(batch.Events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Events))
	for i := range batch.Events {
		msg, err := serializeToMessage(batch.Events[i], batch.SnapshotID, batch.PublishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	p.logger.Debug("events published", "count", len(msgs), "snapshot_id", batch.SnapshotID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Event into a Kafka message.
func serializeToMessage(event domain.Event, snapshotID string, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}
	key := event.ExternalID
	if key == "" {
		key = fmt.Sprintf("%s-%d", snapshotID, event.ID)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(event.Region)},
			{Key: "geo_region", Value: []byte(event.GeoRegion)},
			{Key: "snapshot_id", Value: []byte(snapshotID)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
