package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"barrierbet/config"
	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(mocks *TestMocks) *authService {
	return NewAuthService(mocks.UserRepo, mocks.BalanceHistoryRepo, mocks.EventPublisher, mocks.Hasher, mocks.Identity).(*authService)
}

func TestAuthService_Register_Success(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	ctx := context.Background()
	mocks := NewTestMocks()
	newID := uuid.New()

	mocks.UserRepo.On("GetByUsername", ctx, "barrier_king").Return(nil, nil)
	mocks.Hasher.On("Hash", "hunter22").Return("$2a$10$hash", nil)
	mocks.UserRepo.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.Username == "barrier_king" && u.PasswordHash == "$2a$10$hash" && u.Balance == 100000 && !u.IsAdmin
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.User).ID = newID
	})
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.UserID == newID &&
			h.TransactionType == entities.TransactionTypeInitial &&
			h.BalanceAfter == 100000 &&
			h.TransactionMetadata["username"] == "barrier_king"
	})).Return(nil)
	mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.UserCreatedEvent) bool {
		return e.UserID == newID && e.Username == "barrier_king" && e.InitialBalance == 100000
	})).Return(nil)

	user, err := newTestAuthService(mocks).Register(ctx, "  barrier_king ", "hunter22")

	require.NoError(t, err)
	assert.Equal(t, newID, user.ID)
	assert.Equal(t, int64(100000), user.Balance)
	mocks.AssertAllExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "hunter22"},
		{"username too long", strings.Repeat("a", 33), "hunter22"},
		{"username with space", "bad name", "hunter22"},
		{"username with symbol", "bad$name", "hunter22"},
		{"password too short", "player", "12345"},
		{"password too long", "player", strings.Repeat("p", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()

			_, err := newTestAuthService(mocks).Register(context.Background(), tt.username, tt.password)

			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			mocks.UserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	ctx := context.Background()

	t.Run("existing user", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "taken").Return(&entities.User{ID: uuid.New(), Username: "taken"}, nil)

		_, err := newTestAuthService(mocks).Register(ctx, "taken", "hunter22")

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		mocks.Hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("concurrent registration hits the unique constraint", func(t *testing.T) {
		config.SetTestConfig(config.NewTestConfig())
		defer config.ResetConfig()

		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "racer").Return(nil, nil)
		mocks.Hasher.On("Hash", "hunter22").Return("hash", nil)
		mocks.UserRepo.On("Create", ctx, mock.Anything).Return(domain.ErrUsernameTaken)

		_, err := newTestAuthService(mocks).Register(ctx, "racer", "hunter22")

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		mocks.BalanceHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &entities.User{ID: uuid.New(), Username: "player", PasswordHash: "stored-hash"}

	t.Run("success", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "player").Return(user, nil)
		mocks.Hasher.On("Compare", "stored-hash", "hunter22").Return(nil)
		mocks.Identity.On("IssueToken", user).Return("signed.jwt.token", nil)

		result, err := newTestAuthService(mocks).Login(ctx, "player", "hunter22")

		require.NoError(t, err)
		assert.Equal(t, "signed.jwt.token", result.Token)
		assert.Equal(t, user, result.User)
		mocks.AssertAllExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil)
		mocks.Hasher.On("Hash", mock.AnythingOfType("string")).Return("decoy-hash", nil).Once()
		mocks.Hasher.On("Compare", "decoy-hash", "hunter22").Return(domain.ErrInvalidCredentials).Twice()

		auth := newTestAuthService(mocks)
		_, err := auth.Login(ctx, "ghost", "hunter22")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		_, err = auth.Login(ctx, "ghost", "hunter22")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		mocks.Hasher.AssertNumberOfCalls(t, "Hash", 1)
		mocks.Identity.AssertNotCalled(t, "IssueToken", mock.Anything)
		mocks.AssertAllExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "player").Return(user, nil)
		mocks.Hasher.On("Compare", "stored-hash", "wrong").Return(domain.ErrInvalidCredentials)

		_, err := newTestAuthService(mocks).Login(ctx, "player", "wrong")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		mocks.Identity.AssertNotCalled(t, "IssueToken", mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.UserRepo.On("GetByUsername", ctx, "player").Return(nil, errors.New("db down"))

		_, err := newTestAuthService(mocks).Login(ctx, "player", "hunter22")

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	identity := &entities.Identity{UserID: uuid.New(), Username: "player", Role: entities.RolePlayer}

	mocks.Identity.On("VerifyToken", ctx, "good").Return(identity, nil)
	mocks.Identity.On("VerifyToken", ctx, "bad").Return(nil, domain.ErrInvalidToken)

	service := newTestAuthService(mocks)

	got, err := service.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	_, err = service.VerifyToken(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "Player_1", "dot.name", "dash-name", strings.Repeat("x", 32)}
	for _, name := range valid {
		assert.NoError(t, ValidateUsername(name), name)
	}

	invalid := []string{"", "ab", "with space", "emoji🙂", strings.Repeat("x", 33)}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateUsername(name), domain.ErrInvalidCredentials, name)
	}
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	ctx := context.Background()
	mocks := NewTestMocks()

	mocks.UserRepo.On("GetByUsername", ctx, "operator").Return(nil, nil)
	mocks.Hasher.On("Hash", "hunter22").Return("hash", nil)
	mocks.UserRepo.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.Username == "operator" && u.IsAdmin
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.User).ID = uuid.New()
	})
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mocks.EventPublisher.On("Publish", mock.Anything).Return(nil)

	user, err := newTestAuthService(mocks).RegisterAdmin(ctx, "operator", "hunter22")

	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, entities.RoleAdmin, user.Role())
}
