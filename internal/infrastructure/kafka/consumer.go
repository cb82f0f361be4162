package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/finboard/internal/infrastructure/observability"
	"github.com/honeynil/finboard/internal/models"
	"github.com/segmentio/kafka-go"
)

// NotificationHandler receives notifications read from the topic.
type NotificationHandler interface {
	HandleNotification(ctx context.Context, n models.Notification) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// readRetryDelay is the pause after a failed read before polling again.
const readRetryDelay = time.Second

type Consumer struct {
	reader     messageReader
	topic      string
	handler    NotificationHandler
	retryDelay time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, handler NotificationHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		topic:      topic,
		handler:    handler,
		retryDelay: readRetryDelay,
	}
}

// Consume reads messages until ctx is cancelled. Malformed messages are
// logged and skipped.
func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Kafka consumer stopped", "topic", c.topic)
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.topic, "error", err)
			select {
			case <-ctx.Done():
				slog.Info("Kafka consumer stopped", "topic", c.topic)
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			observability.NotificationEvents.WithLabelValues("consume", "error").Inc()
			slog.Error("failed to handle Kafka message", "topic", msg.Topic, "key", string(msg.Key), "error", err)
			continue
		}
		observability.NotificationEvents.WithLabelValues("consume", "success").Inc()
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	slog.Debug("Kafka message received", "topic", msg.Topic, "key", string(msg.Key))

	var n models.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	if n.ID == "" || n.Title == "" {
		return fmt.Errorf("invalid notification: missing id or title")
	}
	return c.handler.HandleNotification(ctx, n)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
