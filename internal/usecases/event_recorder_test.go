package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"recurpay.backend/internal/domain/entities"
	"recurpay.backend/internal/usecases"
)

func TestEventRecorder_RecordAndPublish(t *testing.T) {
	repo := new(MockSchedulerEventRepository)
	publisher := new(MockEventPublisher)
	recorder := usecases.NewEventRecorder(repo, publisher)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*entities.SchedulerEvent")).Return(nil).Once()
	event, err := recorder.Record(ctx, entities.EventRecurringPaymentCreated, alice, map[string]interface{}{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, alice, event.Owner)
	assert.Equal(t, entities.EventRecurringPaymentCreated, event.Type)
	assert.NotEqual(t, uuid.Nil, event.ID)

	// a failed publish is logged, never surfaced
	publisher.On("Publish", ctx, event).Return(assert.AnError).Once()
	recorder.Publish(ctx, event, nil)

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestEventRecorder_RecordFailure(t *testing.T) {
	repo := new(MockSchedulerEventRepository)
	recorder := usecases.NewEventRecorder(repo, nil)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()
	_, err := recorder.Record(ctx, entities.EventTokensRescued, alice, nil)
	assert.ErrorIs(t, err, assert.AnError)

	// no publisher configured
	recorder.Publish(ctx, &entities.SchedulerEvent{})
}

func TestEventRecorder_List(t *testing.T) {
	e := newTestEnv(t)
	e.registerType("noop", noopAt, 1, false)
	e.fund(alice, 100)
	_, err := e.create(alice, "noop", 10)
	require.NoError(t, err)

	all, err := e.events.List(e.ctx, nil, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, entities.EventRecurringPaymentCreated, all[0].Type)

	mine, err := e.events.List(e.ctx, &alice, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice, mine[0].Owner)
}
