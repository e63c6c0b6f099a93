package kafka_client

import "time"

const (
	// Classified activity events, keyed by item id so all transitions of
	// one item land in the same partition.
	KAFKA_TOPIC_ACTIVITY_EVENTS = "reddit-activity-events"
)

const (
	MAX_RETRIES = 5
	RETRY_DELAY = 2 * time.Second
)
