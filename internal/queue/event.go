// Package queue defines message payloads exchanged over the message broker.
package queue

// SyncQueueName is the durable queue sync events are published to.
const SyncQueueName = "swapi.synced"

// SyncCompletedEvent is published after a resource has been drained from
// upstream and upserted locally.  It carries enough for downstream
// consumers to log or alert without querying the database.
type SyncCompletedEvent struct {
	Resource      string `json:"resource"`
	TotalUpstream int    `json:"total_upstream"`
	TotalUpserted int    `json:"total_upserted"`
	DurationMS    int64  `json:"duration_ms"`
	SyncedAt      string `json:"synced_at"`
}
