package services

import (
	"context"
	"testing"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_GetHistory_NormalizesQuery(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name     string
		query    entities.HistoryQuery
		expected entities.HistoryQuery
	}{
		{"defaults", entities.HistoryQuery{}, entities.HistoryQuery{Limit: DefaultHistoryLimit}},
		{"caps limit", entities.HistoryQuery{Limit: 500}, entities.HistoryQuery{Limit: MaxHistoryLimit}},
		{"negative offset", entities.HistoryQuery{Limit: 5, Offset: -3}, entities.HistoryQuery{Limit: 5}},
		{"keeps valid query", entities.HistoryQuery{Limit: 20, Offset: 40, Ascending: true}, entities.HistoryQuery{Limit: 20, Offset: 40, Ascending: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mocks := NewTestMocks()
			mocks.SessionRepo.On("GetByUser", ctx, userID, tt.expected).Return([]*entities.GameSession{}, nil)

			sessions, err := NewStatsService(mocks.SessionRepo).GetHistory(ctx, userID, tt.query)

			require.NoError(t, err)
			assert.Empty(t, sessions)
			mocks.SessionRepo.AssertExpectations(t)
		})
	}
}

func TestStatsService_GetStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	userID := uuid.New()
	stats := &entities.SessionStats{TotalGames: 3, TotalWins: 1, TotalLosses: 2, TotalEarnings: 1200, TotalLossAmount: 2000}

	mocks.SessionRepo.On("GetStats", ctx, userID).Return(stats, nil)

	got, err := NewStatsService(mocks.SessionRepo).GetStats(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 33.33, got.WinRate())
	assert.Equal(t, int64(1200), got.TotalEarnings)
}

func TestStatsService_ClearHistoryKeepsOpenSessions(t *testing.T) {
	h := newSQLiteHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "historian", 10000)
	stats := NewStatsService(h.Sessions)

	settled, err := h.Settlement.PlaceBet(ctx, user.ID, 1000, 5, "Easy")
	require.NoError(t, err)
	_, err = h.Settlement.SubmitResult(ctx, user.ID, settled.SessionID, 1, false)
	require.NoError(t, err)
	pending, err := h.Settlement.PlaceBet(ctx, user.ID, 1000, 5, "Easy")
	require.NoError(t, err)

	deleted, err := stats.ClearHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := stats.GetHistory(ctx, user.ID, entities.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, pending.SessionID, remaining[0].ID)

	// The open session can still be settled after the purge
	_, err = h.Settlement.SubmitResult(ctx, user.ID, pending.SessionID, 5, true)
	require.NoError(t, err)
}
