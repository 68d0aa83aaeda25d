package interfaces

import (
	"context"
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

// AccountLedger owns user balances and keeps them non-negative under
// concurrent debit and credit calls.
type AccountLedger interface {
	// Debit subtracts amount (> 0) and returns the new balance
	Debit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error)

	// Credit adds amount (>= 0) and returns the new balance
	Credit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error)

	// GetBalance returns the current balance
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

// SessionSettlement owns the game session lifecycle
type SessionSettlement interface {
	// PlaceBet debits the bet and opens a session
	PlaceBet(ctx context.Context, userID uuid.UUID, betAmount int64, targetBarriers int, difficulty string) (*entities.BetPlacement, error)

	// SubmitResult settles an open session exactly once and credits any payout
	SubmitResult(ctx context.Context, userID, sessionID uuid.UUID, barriersPassed int, won bool) (*entities.SettlementResult, error)

	// ExpireStaleSessions settles open sessions older than olderThan as losses
	ExpireStaleSessions(ctx context.Context, olderThan time.Duration) (int, error)
}

// AuthService handles registration and login
type AuthService interface {
	Register(ctx context.Context, username, password string) (*entities.User, error)
	RegisterAdmin(ctx context.Context, username, password string) (*entities.User, error)
	Login(ctx context.Context, username, password string) (*entities.LoginResult, error)
	VerifyToken(ctx context.Context, token string) (*entities.Identity, error)
}

// UserService handles profile reads and updates
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error
}

// StatsService exposes a user's game history and statistics
type StatsService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error)
	GetHistory(ctx context.Context, userID uuid.UUID, query entities.HistoryQuery) ([]*entities.GameSession, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error)
}

// AdminService exposes operator-only views and balance adjustments
type AdminService interface {
	ListUsers(ctx context.Context, page, pageSize int) (*entities.UserPage, error)
	GetStatistics(ctx context.Context) (*entities.GlobalStats, error)
	AdjustBalance(ctx context.Context, adminID, userID uuid.UUID, amount int64, reason string) (int64, error)
}

// IdentityProvider issues and verifies bearer credentials
type IdentityProvider interface {
	IssueToken(user *entities.User) (string, error)
	VerifyToken(ctx context.Context, token string) (*entities.Identity, error)
}

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// LedgerObserver is told about compare-and-swap contention in the ledger
type LedgerObserver interface {
	RecordLedgerConflict(operation string)
	RecordLedgerExhausted(operation string)
}
