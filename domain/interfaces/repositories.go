package interfaces

import (
	"context"
	"time"

	"barrierbet/domain/entities"
	"barrierbet/domain/events"

	"github.com/google/uuid"
)

// UserRepository defines the account store. Lookups return nil, nil when the
// user does not exist.
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// Create inserts a new user. Returns domain.ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *entities.User) error

	// CompareAndSwapBalance sets the balance only if the stored version still
	// equals expectedVersion, bumping the version. Returns false on a version
	// mismatch or if the user is gone.
	CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance int64) (bool, error)

	// UpdateUsername renames a user. Returns domain.ErrUsernameTaken on a duplicate username.
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error

	// List returns a page of users ordered by creation time
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)
}

// GameSessionRepository defines the session store. Lookups return nil, nil
// when the session does not exist.
type GameSessionRepository interface {
	// Create inserts a new open session
	Create(ctx context.Context, session *entities.GameSession) error

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error)

	// Settle completes an open session owned by settlement.UserID. Returns
	// false if the session was already completed (or does not match).
	Settle(ctx context.Context, settlement *entities.Settlement) (bool, error)

	// GetByUser returns a page of a user's sessions ordered by start time
	GetByUser(ctx context.Context, userID uuid.UUID, query entities.HistoryQuery) ([]*entities.GameSession, error)

	// GetOpenStartedBefore returns open sessions started before the cutoff
	GetOpenStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.GameSession, error)

	// DeleteCompletedByUser removes a user's settled sessions
	DeleteCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// GetStats returns session statistics for a user
	GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error)

	// GetGlobalStats returns session statistics across all users
	GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent balance history for a user
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
