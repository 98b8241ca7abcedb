package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findosh/brandsales/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter publishes audit entries to a Kafka topic keyed by filename
type KafkaWriter struct {
	writer messageWriter
}

// messageWriter abstracts kafka.Writer for testability
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter creates a Kafka writer for the given host:port brokers
func NewKafkaWriter(brokers []string, topic string) *KafkaWriter {
	return &KafkaWriter{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (k *KafkaWriter) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(entry.Filename), Value: b}); err != nil {
		return fmt.Errorf("failed to publish audit entry: %w", err)
	}
	return nil
}

func (k *KafkaWriter) Close() error {
	return k.writer.Close()
}
