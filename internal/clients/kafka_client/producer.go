package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/redditwatch/internal/models"
	"github.com/spacesedan/redditwatch/internal/monitoring"
)

var producer *kafka.Producer

func InitKafkaProducer(cfg KafkaConfig) error {
	slog.Info("[KafkaClient] Initializing Kafka Producer...")

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	})
	if err != nil {
		return fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	producer = p
	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return nil
}

func CloseKafkaProducer() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if producer != nil {
		if remaining := producer.Flush(5000); remaining > 0 {
			slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
				slog.Int("remaining", remaining))
		}
		producer.Close()
		slog.Info("[KafkaClient] Kafka producer shut down")
	}
}

// PublishEvent sends one activity event to Kafka, keyed by the item id.
func PublishEvent(ctx context.Context, topic string, event models.Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] Failed to serialize event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.ItemID),
		Value:          jsonData,
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("[KafkaClient] Failed to produce event: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] Unexpected delivery report: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] Delivery failed: %w", m.TopicPartition.Error)
		}
	}

	monitoring.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// EventBus adapts the producer to the watcher's bus interface.
type EventBus struct {
	Topic string
}

func NewEventBus(topic string) *EventBus {
	if topic == "" {
		topic = KAFKA_TOPIC_ACTIVITY_EVENTS
	}
	return &EventBus{Topic: topic}
}

func (b *EventBus) Publish(ctx context.Context, event models.Event) error {
	return PublishEvent(ctx, b.Topic, event)
}
