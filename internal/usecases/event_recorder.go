package usecases

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/domain/repositories"
	"recurpay.backend/pkg/logger"
	"recurpay.backend/pkg/utils"
)

// EventPublisher delivers committed events to off-chain subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.SchedulerEvent) error
}

// EventRecorder persists scheduler events with the state change that caused
// them and publishes them once that change has committed.
type EventRecorder struct {
	repo      repositories.SchedulerEventRepository
	publisher EventPublisher
}

// NewEventRecorder creates a recorder; publisher may be nil.
func NewEventRecorder(repo repositories.SchedulerEventRepository, publisher EventPublisher) *EventRecorder {
	return &EventRecorder{repo: repo, publisher: publisher}
}

// Record stores an event in the transaction carried by ctx.
func (r *EventRecorder) Record(ctx context.Context, eventType entities.SchedulerEventType, owner common.Address, payload map[string]interface{}) (*entities.SchedulerEvent, error) {
	event := &entities.SchedulerEvent{
		ID:        utils.GenerateUUIDv7(),
		Type:      eventType,
		Owner:     owner,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Publish is best effort: the event is already persisted, so a failed
// publish is logged and otherwise ignored.
func (r *EventRecorder) Publish(ctx context.Context, events ...*entities.SchedulerEvent) {
	if r.publisher == nil {
		return
	}
	for _, event := range events {
		if event == nil {
			continue
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			logger.Warn(ctx, "Failed to publish scheduler event",
				zap.String("event_id", event.ID.String()),
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
		}
	}
}

// List returns recent events, newest first, optionally for one owner.
func (r *EventRecorder) List(ctx context.Context, owner *common.Address, limit int) ([]*entities.SchedulerEvent, error) {
	limit = normalizeEventLimit(limit)
	if owner != nil {
		return r.repo.ListByOwner(ctx, *owner, limit)
	}
	return r.repo.List(ctx, limit)
}
