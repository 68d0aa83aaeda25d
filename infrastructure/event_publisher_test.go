package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"barrierbet/domain/entities"
	"barrierbet/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// recordingBus is a MessagePublisher that keeps everything it is given
type recordingBus struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (b *recordingBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, publishedMessage{subject: subject, data: data})
	return nil
}

func TestEventPublisher_PublishesEnvelope(t *testing.T) {
	t.Parallel()

	bus := &recordingBus{}
	publisher := NewEventPublisher(bus, NewEventSubjectMapper())

	sessionID := uuid.New()
	event := events.SessionSettledEvent{
		UserID:         uuid.New(),
		SessionID:      sessionID,
		BetAmount:      1000,
		Difficulty:     entities.DifficultyEasy,
		BarriersPassed: 5,
		Payout:         1200,
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, bus.messages, 1)
	assert.Equal(t, "game.session_settled", bus.messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.messages[0].data, &envelope))
	assert.Equal(t, string(events.EventTypeSessionSettled), envelope.EventType)
	assert.Equal(t, "barrierbet", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.SessionSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestEventPublisher_LocalHandlers(t *testing.T) {
	t.Parallel()

	publisher := NewEventPublisher(nil, NewEventSubjectMapper())

	var calls []string
	publisher.RegisterLocalHandler(events.EventTypeBetPlaced, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "first")
		return assert.AnError
	})
	publisher.RegisterLocalHandler(events.EventTypeBetPlaced, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "second")
		_, ok := event.(events.BetPlacedEvent)
		assert.True(t, ok)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeUserCreated, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	// A failing handler does not stop the others, and no bus means no error
	require.NoError(t, publisher.Publish(events.BetPlacedEvent{UserID: uuid.New(), SessionID: uuid.New(), BetAmount: 100}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventPublisher_BusError(t *testing.T) {
	t.Parallel()

	bus := &recordingBus{err: assert.AnError}
	publisher := NewEventPublisher(bus, NewEventSubjectMapper())

	err := publisher.Publish(events.UserCreatedEvent{UserID: uuid.New(), Username: "runner"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()
	all := []events.Event{
		events.BalanceChangeEvent{},
		events.UserCreatedEvent{},
		events.BetPlacedEvent{},
		events.SessionSettledEvent{},
	}

	subjects := mapper.GetAllSubjects()
	require.Len(t, subjects, len(all))
	for _, event := range all {
		subject := mapper.MapEventToSubject(event)
		assert.Contains(t, subjects, subject)
		assert.Equal(t, event.Type(), mapper.MapSubjectToEventType(subject))
	}
}

func TestNoopEventPublisher(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewNoopEventPublisher().Publish(events.UserCreatedEvent{}))
}
