// Copyright (c) 2026 Parcelia. All rights reserved.

package authgw

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parcelia/backoffice/internal/platform/constants"
)

// Broker fans auth lifecycle events out to every interested consumer over
// Redis pub/sub.
//
// # Why pub/sub?
//
// Several back-office processes (API replicas, workstation agents connected
// through SSE) each run their own session reconciliation engine. A sign-out
// or token rotation performed against one replica must reach all of them.
// Redis pub/sub gives at-least-once, possibly-duplicated delivery — the
// engines' de-duplication window exists precisely because of this.
type Broker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBroker creates a Redis-backed auth event broker.
func NewBroker(client *redis.Client, logger *slog.Logger) *Broker {
	return &Broker{client: client, logger: logger}
}

// Publish emits one auth event on the shared channel.
func (broker *Broker) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("authgw_broker_marshal_failed: %w", err)
	}

	if err := broker.client.Publish(ctx, constants.RedisChannelAuthEvents, payload).Err(); err != nil {
		return fmt.Errorf("authgw_broker_publish_failed: %w", err)
	}

	broker.logger.Debug("auth_event_published",
		slog.String("type", string(event.Type)),
		slog.String("email", event.Identity.Email),
	)

	return nil
}

// Subscribe opens a subscription on the auth event channel.
//
// The returned channel is closed when ctx is cancelled or the subscription
// drops. Malformed payloads are logged and skipped, never delivered.
func (broker *Broker) Subscribe(ctx context.Context) <-chan Event {
	events := make(chan Event, 16)
	pubsub := broker.client.Subscribe(ctx, constants.RedisChannelAuthEvents)

	go func() {
		defer close(events)
		defer func() {
			_ = pubsub.Close()
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
					broker.logger.Warn("auth_event_decode_failed", slog.Any("error", err))
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events
}
