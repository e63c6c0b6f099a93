package kafka_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/redditwatch/internal/models"
)

var consumer *kafka.Consumer

func InitKafkaConsumer(cfg KafkaConfig) error {
	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.Broker),
		slog.String("group_id", cfg.GroupID),
		slog.String("topic", cfg.Topic))

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Broker,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	err = c.SubscribeTopics([]string{cfg.Topic}, nil)
	if err != nil {
		return fmt.Errorf("[KafkaClient] Failed to subscribe to topic: %w", err)
	}

	consumer = c
	slog.Info("[KafkaClient] Kafka Consumer initialized successfully")
	return nil
}

func CloseKafkaConsumer() {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			slog.Warn("[KafkaClient] Failed to close consumer",
				slog.String("error", err.Error()))
		}
	}
}

func GetKafkaConsumer() *kafka.Consumer {
	return consumer
}

// NextEvent blocks until the next decodable activity event arrives on the
// subscribed topic. Undecodable messages are logged and skipped; read
// failures are retried, except an all-brokers-down error which aborts.
func NextEvent(ctx context.Context) (*kafka.Message, models.Event, error) {
	var event models.Event
	if consumer == nil {
		return nil, event, errors.New("[KafkaClient] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-ctx.Done():
			slog.Warn("[KafkaClient] Context cancelled, stopping event reads")
			return nil, event, ctx.Err()
		default:
		}

		msg, err := consumer.ReadMessage(-1)
		if err != nil {
			if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrAllBrokersDown {
				slog.Error("[KafkaClient] All Kafka brokers are down. Aborting")
				return nil, event, err
			}

			slog.Warn("[KafkaClient] Failed to read event, retrying...",
				slog.Int("attempt", i+1),
				slog.Int("max_retries", MAX_RETRIES),
				slog.String("error", err.Error()))

			time.Sleep(RETRY_DELAY)
			continue
		}

		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Warn("[KafkaClient] Skipping undecodable event",
				slog.String("error", err.Error()))
			continue
		}
		return msg, event, nil
	}
	return nil, event, errors.New("[KafkaClient] Failed to read event after retries")
}

func CommitMessage(msg *kafka.Message) error {
	if consumer == nil {
		return errors.New("[KafkaCommitter] Kafka consumer has not been initialized")
	}

	_, err := consumer.CommitMessage(msg)
	if err != nil {
		slog.Warn("[KafkaCommitter] Failed to commit offset",
			slog.String("error", err.Error()),
			slog.String("partition", fmt.Sprintf("%d", msg.TopicPartition.Partition)),
			slog.String("offset", fmt.Sprintf("%d", msg.TopicPartition.Offset)))
		return err
	}

	return nil
}
