package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// WatcherConfig is everything the watcher binary reads from the environment.
type WatcherConfig struct {
	RedditClientID     string
	RedditClientSecret string

	// Watch lists, comma separated in WATCH_SUBREDDITS / WATCH_REDDITORS.
	Subreddits []string
	Redditors  []string

	CacheCapacity int
	PollInterval  time.Duration

	MetricsAddr string
}

func LoadWatcherConfig() WatcherConfig {
	cacheCapacity, err := strconv.Atoi(os.Getenv("CONTENT_CACHE_CAPACITY"))
	if err != nil {
		cacheCapacity = 4096
	}

	pollSeconds, err := strconv.Atoi(os.Getenv("FEED_POLL_INTERVAL"))
	if err != nil {
		pollSeconds = 15
	}

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9100"
	}

	return WatcherConfig{
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Subreddits:         splitList(os.Getenv("WATCH_SUBREDDITS")),
		Redditors:          splitList(os.Getenv("WATCH_REDDITORS")),
		CacheCapacity:      cacheCapacity,
		PollInterval:       time.Duration(pollSeconds) * time.Second,
		MetricsAddr:        metricsAddr,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
