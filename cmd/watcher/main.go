package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/redditwatch/config"
	"github.com/spacesedan/redditwatch/internal/clients"
	"github.com/spacesedan/redditwatch/internal/clients/kafka_client"
	"github.com/spacesedan/redditwatch/internal/logging"
	"github.com/spacesedan/redditwatch/internal/models"
	"github.com/spacesedan/redditwatch/internal/watch"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.LoadWatcherConfig()

	for {
		err := kafka_client.InitKafkaProducer(kafka_client.GetKafkaConfig())
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
	defer kafka_client.CloseKafkaProducer()

	reddit := clients.NewRedditClient(cfg.RedditClientID, cfg.RedditClientSecret)
	bus := kafka_client.NewEventBus(kafka_client.KAFKA_TOPIC_ACTIVITY_EVENTS)

	watcher, err := watch.NewWatcher(reddit, bus, watch.Config{
		CacheCapacity: cfg.CacheCapacity,
		PollInterval:  cfg.PollInterval,
		OnStopped: func(entity string, kind models.ContentKind, err error) {
			slog.Error("Watch has stopped and will not restart",
				slog.String("entity", entity),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
		},
	})
	if err != nil {
		slog.Error("Failed to build watcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			slog.Warn("Metrics server stopped", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, subreddit := range cfg.Subreddits {
		watcher.WatchSubreddit(ctx, subreddit)
	}
	for _, redditor := range cfg.Redditors {
		watcher.WatchRedditor(ctx, redditor)
	}

	slog.Info("Watching reddit activity",
		slog.Int("subreddits", len(cfg.Subreddits)),
		slog.Int("redditors", len(cfg.Redditors)))

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	<-stopChan

	slog.Info("Shutting down watcher gracefully...")
	cancel()
	watcher.Close()
}
