package services

import (
	"context"
	"errors"
	"testing"

	"barrierbet/domain"
	"barrierbet/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	user := &entities.User{ID: uuid.New(), Username: "player", Balance: 4200}
	stats := &entities.SessionStats{TotalGames: 4, TotalWins: 1, TotalLosses: 2, PendingGames: 1}

	mocks.UserRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	mocks.SessionRepo.On("GetStats", ctx, user.ID).Return(stats, nil)

	profile, err := NewUserService(mocks.UserRepo, mocks.SessionRepo).GetProfile(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user, profile.User)
	assert.Equal(t, 25.0, profile.Stats.WinRate())
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	userID := uuid.New()

	mocks.UserRepo.On("GetByID", ctx, userID).Return(nil, nil)

	_, err := NewUserService(mocks.UserRepo, mocks.SessionRepo).GetProfile(ctx, userID)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	mocks.SessionRepo.AssertNotCalled(t, "GetStats", mock.Anything, mock.Anything)
}

func TestUserService_UpdateUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name     string
		username string
		repoErr  error
		expected error
		called   bool
	}{
		{"success", "new_name", nil, nil, true},
		{"invalid", "no", nil, domain.ErrInvalidCredentials, false},
		{"taken", "popular", domain.ErrUsernameTaken, domain.ErrUsernameTaken, true},
		{"missing user", "orphan", domain.ErrUserNotFound, domain.ErrUserNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			if tt.called {
				mocks.UserRepo.On("UpdateUsername", ctx, userID, tt.username).Return(tt.repoErr)
			}

			err := NewUserService(mocks.UserRepo, mocks.SessionRepo).UpdateUsername(ctx, userID, tt.username)

			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
			if !tt.called {
				mocks.UserRepo.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUserService_UpdateUsername_WrapsStorageErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	userID := uuid.New()
	storageErr := errors.New("timeout")

	mocks.UserRepo.On("UpdateUsername", ctx, userID, "valid_name").Return(storageErr)

	err := NewUserService(mocks.UserRepo, mocks.SessionRepo).UpdateUsername(ctx, userID, "valid_name")

	assert.ErrorIs(t, err, storageErr)
	assert.Contains(t, err.Error(), "failed to update username")
}
