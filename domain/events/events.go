package events

import (
	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeUserCreated    EventType = "user_created"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeSessionSettled EventType = "session_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          uuid.UUID                `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	SessionID       *uuid.UUID               `json:"session_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new account registration
type UserCreatedEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	InitialBalance int64     `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BetPlacedEvent represents an accepted bet that opened a session
type BetPlacedEvent struct {
	UserID         uuid.UUID           `json:"user_id"`
	SessionID      uuid.UUID           `json:"session_id"`
	BetAmount      int64               `json:"bet_amount"`
	TargetBarriers int                 `json:"target_barriers"`
	Difficulty     entities.Difficulty `json:"difficulty"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// SessionSettledEvent represents the one-time completion of a session
type SessionSettledEvent struct {
	UserID         uuid.UUID           `json:"user_id"`
	SessionID      uuid.UUID           `json:"session_id"`
	BetAmount      int64               `json:"bet_amount"`
	Difficulty     entities.Difficulty `json:"difficulty"`
	BarriersPassed int                 `json:"barriers_passed"`
	Payout         int64               `json:"payout"`
	Expired        bool                `json:"expired"`
}

func (e SessionSettledEvent) Type() EventType {
	return EventTypeSessionSettled
}
