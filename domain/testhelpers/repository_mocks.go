package testhelpers

import (
	"context"
	"time"

	"barrierbet/domain/entities"
	"barrierbet/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance int64) (bool, error) {
	args := m.Called(ctx, id, expectedVersion, newBalance)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGameSessionRepository is a mock implementation of GameSessionRepository
type MockGameSessionRepository struct {
	mock.Mock
}

func (m *MockGameSessionRepository) Create(ctx context.Context, session *entities.GameSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockGameSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) Settle(ctx context.Context, settlement *entities.Settlement) (bool, error) {
	args := m.Called(ctx, settlement)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameSessionRepository) GetByUser(ctx context.Context, userID uuid.UUID, query entities.HistoryQuery) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) GetOpenStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.GameSession, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

func (m *MockGameSessionRepository) DeleteCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGameSessionRepository) GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionStats), args.Error(1)
}

func (m *MockGameSessionRepository) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GlobalStats), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockAccountLedger is a mock implementation of AccountLedger
type MockAccountLedger struct {
	mock.Mock
}

func (m *MockAccountLedger) Debit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error) {
	args := m.Called(ctx, userID, amount, memo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error) {
	args := m.Called(ctx, userID, amount, memo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountLedger) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock implementation of PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

// MockIdentityProvider is a mock implementation of IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) IssueToken(user *entities.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) VerifyToken(ctx context.Context, token string) (*entities.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}
