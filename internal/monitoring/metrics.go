package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventsClassified counts classified observations by content kind and the
// transition the classifier assigned.
var EventsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "redditwatch_events_classified_total",
	Help: "Total observations classified, by content kind and transition",
}, []string{"kind", "transition"})

// TransientRetries counts feed errors that were retried with backoff. A watch
// that is incrementing this is still trying.
var TransientRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "redditwatch_feed_transient_retries_total",
	Help: "Total transient feed errors retried with backoff",
}, []string{"entity", "kind"})

// WatchesStopped counts watcher loops that terminated on a permanent feed
// error. A watch that has incremented this has stopped for good.
var WatchesStopped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "redditwatch_watches_stopped_total",
	Help: "Total watcher loops stopped by a permanent feed error",
}, []string{"entity", "kind"})

// EventsPublished counts events handed to the downstream bus.
var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "redditwatch_events_published_total",
	Help: "Total events published to the downstream bus",
}, []string{"topic"})
