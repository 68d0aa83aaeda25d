package testhelpers

import (
	"context"
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionSettlement is a mock implementation of SessionSettlement
type MockSessionSettlement struct {
	mock.Mock
}

func (m *MockSessionSettlement) PlaceBet(ctx context.Context, userID uuid.UUID, betAmount int64, targetBarriers int, difficulty string) (*entities.BetPlacement, error) {
	args := m.Called(ctx, userID, betAmount, targetBarriers, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetPlacement), args.Error(1)
}

func (m *MockSessionSettlement) SubmitResult(ctx context.Context, userID, sessionID uuid.UUID, barriersPassed int, won bool) (*entities.SettlementResult, error) {
	args := m.Called(ctx, userID, sessionID, barriersPassed, won)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettlementResult), args.Error(1)
}

func (m *MockSessionSettlement) ExpireStaleSessions(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*entities.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAuthService) RegisterAdmin(ctx context.Context, username, password string) (*entities.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*entities.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LoginResult), args.Error(1)
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (*entities.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockUserService) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SessionStats), args.Error(1)
}

func (m *MockStatsService) GetHistory(ctx context.Context, userID uuid.UUID, query entities.HistoryQuery) ([]*entities.GameSession, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GameSession), args.Error(1)
}

func (m *MockStatsService) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, page, pageSize int) (*entities.UserPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserPage), args.Error(1)
}

func (m *MockAdminService) GetStatistics(ctx context.Context) (*entities.GlobalStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GlobalStats), args.Error(1)
}

func (m *MockAdminService) AdjustBalance(ctx context.Context, adminID, userID uuid.UUID, amount int64, reason string) (int64, error) {
	args := m.Called(ctx, adminID, userID, amount, reason)
	return args.Get(0).(int64), args.Error(1)
}
