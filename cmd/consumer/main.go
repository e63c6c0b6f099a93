package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/redditwatch/config"
	"github.com/spacesedan/redditwatch/internal/clients"
	"github.com/spacesedan/redditwatch/internal/clients/kafka_client"
	"github.com/spacesedan/redditwatch/internal/db"
	"github.com/spacesedan/redditwatch/internal/logging"
	"github.com/spacesedan/redditwatch/internal/models"
	"github.com/spacesedan/redditwatch/internal/render"
)

const (
	ARCHIVE_BATCH_SIZE    = 25
	ARCHIVE_BATCH_TIMEOUT = 5 * time.Second
)

type pendingEvent struct {
	event       models.Event
	fingerprint string
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	for {
		err := kafka_client.InitKafkaConsumer(kafka_client.GetKafkaConfig())
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
	defer kafka_client.CloseKafkaConsumer()

	clients.InitValkey()
	defer clients.CloseValkey()

	db.InitDynamoDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Info("Shutting down consumer gracefully...")
		cancel()
	}()

	consumeEvents(ctx)
}

func consumeEvents(ctx context.Context) {
	slog.Info("[EventConsumer] Listening for activity events...")

	var (
		batch   []pendingEvent
		lastMsg *kafka.Message
	)
	flushTimer := time.NewTicker(ARCHIVE_BATCH_TIMEOUT)
	defer flushTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			flushBatch(context.Background(), batch, lastMsg)
			slog.Warn("[EventConsumer] Stopping consumer...")
			return
		case <-flushTimer.C:
			flushBatch(ctx, batch, lastMsg)
			batch, lastMsg = nil, nil
		default:
			msg, event, err := kafka_client.NextEvent(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				slog.Warn("[EventConsumer] Failed to read event",
					slog.String("error", err.Error()))
				continue
			}

			fingerprint := event.Fingerprint()
			if clients.GetValkeyClient().IsEventProcessed(ctx, fingerprint) {
				_ = kafka_client.CommitMessage(msg)
				continue
			}

			logEvent(event)

			batch = append(batch, pendingEvent{event: event, fingerprint: fingerprint})
			lastMsg = msg

			if len(batch) >= ARCHIVE_BATCH_SIZE {
				flushBatch(ctx, batch, lastMsg)
				batch, lastMsg = nil, nil
			}
		}
	}
}

// flushBatch archives the pending events, then marks them processed, then
// commits the offset. Marking only after a successful archive keeps the
// failure mode at-least-once: a crash mid-flush redelivers, it never drops.
func flushBatch(ctx context.Context, batch []pendingEvent, lastMsg *kafka.Message) {
	if len(batch) == 0 {
		return
	}

	events := make([]models.Event, 0, len(batch))
	for _, pending := range batch {
		events = append(events, pending.event)
	}

	if err := db.ArchiveEvents(ctx, events); err != nil {
		slog.Warn("[EventConsumer] Failed to archive events",
			slog.Int("count", len(batch)),
			slog.String("error", err.Error()))
		return
	}

	for _, pending := range batch {
		if err := clients.GetValkeyClient().MarkEventProcessed(ctx, pending.fingerprint); err != nil {
			slog.Warn("[EventConsumer] Error marking event as processed",
				slog.String("item_id", pending.event.ItemID),
				slog.String("error", err.Error()))
		}
	}

	if lastMsg != nil {
		if err := kafka_client.CommitMessage(lastMsg); err != nil {
			slog.Warn("[EventConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[EventConsumer] Archived events", slog.Int("count", len(batch)))
}

func logEvent(event models.Event) {
	switch event.Transition {
	case models.TransitionJoined, models.TransitionLeft, models.TransitionBanned:
		slog.Info("[EventConsumer] Membership change",
			slog.String("entity", event.Entity),
			slog.String("author", event.Author),
			slog.String("transition", string(event.Transition)))
	default:
		slog.Info("[EventConsumer] Activity event\n" + render.Event(event))
		if event.Transition == models.TransitionCreated && event.Body != "" {
			slog.Debug("[EventConsumer] Rendered body",
				slog.String("html", render.BodyHTML(event.Body)))
		}
	}
}
