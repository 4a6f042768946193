package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	q "github.com/iliyamo/swapi-mirror/internal/queue"
)

// SyncPublisher publishes SyncCompletedEvents to the swapi.synced queue.
// Each publish dials its own connection; syncs are rare enough that a
// long-lived channel is not worth the reconnect bookkeeping.
type SyncPublisher struct {
	URL string
}

// NewSyncPublisher returns nil for an empty url, which Synchronizer treats
// as "publishing disabled".
func NewSyncPublisher(url string) *SyncPublisher {
	if url == "" {
		return nil
	}
	return &SyncPublisher{URL: url}
}

// PublishSyncCompleted declares the durable queue and publishes ev as a
// persistent JSON message.  Errors are logged and returned; callers are
// free to ignore them.
func (p *SyncPublisher) PublishSyncCompleted(ctx context.Context, ev q.SyncCompletedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logger.Warningf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warningf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		q.SyncQueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		logger.Warningf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logger.Warningf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.SyncQueueName, false, false, pub); err != nil {
		logger.Warningf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
