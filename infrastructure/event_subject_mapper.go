package infrastructure

import (
	"fmt"

	"barrierbet/domain/events"
)

// DomainEventStream is the JetStream stream holding all published domain events
const DomainEventStream = "barrierbet_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "users.balance_changed"
	case events.EventTypeUserCreated:
		return "users.created"
	case events.EventTypeBetPlaced:
		return "game.bet_placed"
	case events.EventTypeSessionSettled:
		return "game.session_settled"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "users.balance_changed":
		return events.EventTypeBalanceChange
	case "users.created":
		return events.EventTypeUserCreated
	case "game.bet_placed":
		return events.EventTypeBetPlaced
	case "game.session_settled":
		return events.EventTypeSessionSettled
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"users.balance_changed",
		"users.created",
		"game.bet_placed",
		"game.session_settled",
	}
}
