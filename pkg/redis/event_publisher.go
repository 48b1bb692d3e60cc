package redis

import (
	"context"
	"encoding/json"
	"errors"

	"recurpay.backend/internal/domain/entities"
)

var publishMessage = Publish

// EventPublisher fans scheduler events out on a pub/sub channel for
// off-chain indexers.
type EventPublisher struct {
	channel string
}

// NewEventPublisher creates a publisher for channel
func NewEventPublisher(channel string) *EventPublisher {
	return &EventPublisher{channel: channel}
}

// Channel returns the channel events are published on
func (p *EventPublisher) Channel() string {
	return p.channel
}

// Publish serialises event as JSON and publishes it
func (p *EventPublisher) Publish(ctx context.Context, event *entities.SchedulerEvent) error {
	if event == nil {
		return errors.New("nil event")
	}
	if client == nil {
		return errors.New("redis client not initialized")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = publishMessage(ctx, p.channel, body)
	return err
}
