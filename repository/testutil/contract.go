package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stores groups the three stores a storage engine provides
type Stores struct {
	Users    interfaces.UserRepository
	Sessions interfaces.GameSessionRepository
	History  interfaces.BalanceHistoryRepository
}

// RunStoreContract exercises behavior every storage engine must share
func RunStoreContract(t *testing.T, newStores func(t *testing.T) Stores) {
	t.Run("users", func(t *testing.T) {
		testUserStore(t, newStores(t))
	})
	t.Run("compare and swap", func(t *testing.T) {
		testCompareAndSwap(t, newStores(t))
	})
	t.Run("sessions", func(t *testing.T) {
		testSessionStore(t, newStores(t))
	})
	t.Run("concurrent settle", func(t *testing.T) {
		testConcurrentSettle(t, newStores(t))
	})
	t.Run("stats", func(t *testing.T) {
		testSessionStats(t, newStores(t))
	})
	t.Run("balance history", func(t *testing.T) {
		testBalanceHistory(t, newStores(t))
	})
}

func createUser(t *testing.T, stores Stores, username string, balance int64) *entities.User {
	t.Helper()
	user := CreateTestUserWithBalance(username, balance)
	require.NoError(t, stores.Users.Create(context.Background(), user))
	return user
}

func testUserStore(t *testing.T, stores Stores) {
	ctx := context.Background()

	missing, err := stores.Users.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	user := createUser(t, stores, "alice", 100000)
	assert.Equal(t, int64(0), user.Version)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := stores.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, int64(100000), byID.Balance)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)

	byName, err := stores.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	noName, err := stores.Users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, noName)

	duplicate := CreateTestUser("alice")
	err = stores.Users.Create(ctx, duplicate)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	bob := createUser(t, stores, "bob", 5000)
	assert.ErrorIs(t, stores.Users.UpdateUsername(ctx, bob.ID, "alice"), domain.ErrUsernameTaken)
	require.NoError(t, stores.Users.UpdateUsername(ctx, bob.ID, "robert"))
	assert.ErrorIs(t, stores.Users.UpdateUsername(ctx, uuid.New(), "ghost"), domain.ErrUserNotFound)

	renamed, err := stores.Users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "robert", renamed.Username)

	count, err := stores.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := stores.Users.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)

	all, err := stores.Users.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testCompareAndSwap(t *testing.T, stores Stores) {
	ctx := context.Background()
	user := createUser(t, stores, "casuser", 10000)

	swapped, err := stores.Users.CompareAndSwapBalance(ctx, user.ID, 0, 9000)
	require.NoError(t, err)
	assert.True(t, swapped)

	// Stale version loses
	swapped, err = stores.Users.CompareAndSwapBalance(ctx, user.ID, 0, 1)
	require.NoError(t, err)
	assert.False(t, swapped)

	stored, err := stores.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), stored.Balance)
	assert.Equal(t, int64(1), stored.Version)

	swapped, err = stores.Users.CompareAndSwapBalance(ctx, uuid.New(), 0, 1)
	require.NoError(t, err)
	assert.False(t, swapped)
}

func testSessionStore(t *testing.T, stores Stores) {
	ctx := context.Background()
	user := createUser(t, stores, "runner", 100000)
	other := createUser(t, stores, "other", 100000)

	missing, err := stores.Sessions.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := CreateTestGameSession(user.ID, 1000, 5, entities.DifficultyEasy)
	require.NoError(t, stores.Sessions.Create(ctx, session))

	stored, err := stores.Sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsOpen())
	assert.Nil(t, stored.Payout)
	assert.Nil(t, stored.BarriersPassed)
	assert.Nil(t, stored.SettledAt)
	assert.Equal(t, entities.DifficultyEasy, stored.Difficulty)
	assert.Equal(t, 5, stored.TargetBarriers)
	assert.Equal(t, int64(1000), stored.BetAmount)

	// Another user cannot settle it
	settled, err := stores.Sessions.Settle(ctx, &entities.Settlement{
		SessionID: session.ID, UserID: other.ID, BarriersPassed: 5, Payout: 1200, SettledAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, settled)

	settled, err = stores.Sessions.Settle(ctx, CreateTestSettlement(session, 2, 0))
	require.NoError(t, err)
	assert.True(t, settled)

	settled, err = stores.Sessions.Settle(ctx, CreateTestSettlement(session, 5, 1200))
	require.NoError(t, err)
	assert.False(t, settled, "second settlement must lose")

	stored, err = stores.Sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	require.NotNil(t, stored.Payout)
	assert.Equal(t, int64(0), *stored.Payout)
	require.NotNil(t, stored.BarriersPassed)
	assert.Equal(t, 2, *stored.BarriersPassed)
	assert.NotNil(t, stored.SettledAt)

	// History ordering and paging
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		s := CreateTestGameSession(user.ID, 200, 3, entities.DifficultyHard)
		s.StartedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, stores.Sessions.Create(ctx, s))
	}

	desc, err := stores.Sessions.GetByUser(ctx, user.ID, entities.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, desc, 4)
	assert.Equal(t, session.ID, desc[0].ID)

	asc, err := stores.Sessions.GetByUser(ctx, user.ID, entities.HistoryQuery{Limit: 2, Offset: 1, Ascending: true})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.True(t, asc[0].StartedAt.Before(asc[1].StartedAt))

	stale, err := stores.Sessions.GetOpenStartedBefore(ctx, base.Add(90*time.Second), 10)
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	deleted, err := stores.Sessions.DeleteCompletedByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := stores.Sessions.GetByUser(ctx, user.ID, entities.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	for _, s := range remaining {
		assert.True(t, s.IsOpen())
	}
}

func testConcurrentSettle(t *testing.T, stores Stores) {
	ctx := context.Background()
	user := createUser(t, stores, "racer", 100000)
	session := CreateTestGameSession(user.ID, 1000, 5, entities.DifficultyMedium)
	require.NoError(t, stores.Sessions.Create(ctx, session))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := stores.Sessions.Settle(ctx, CreateTestSettlement(session, 5+i, 1500))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if ok {
				wins++
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, wins)
}

func testSessionStats(t *testing.T, stores Stores) {
	ctx := context.Background()
	user := createUser(t, stores, "stats", 100000)

	outcomes := []struct {
		bet    int64
		payout int64
		settle bool
	}{
		{bet: 1000, payout: 1200, settle: true},
		{bet: 2000, payout: 0, settle: true},
		{bet: 500, payout: 0, settle: true},
		{bet: 300, settle: false},
	}
	for _, o := range outcomes {
		s := CreateTestGameSession(user.ID, o.bet, 5, entities.DifficultyEasy)
		require.NoError(t, stores.Sessions.Create(ctx, s))
		if o.settle {
			ok, err := stores.Sessions.Settle(ctx, CreateTestSettlement(s, 5, o.payout))
			require.NoError(t, err)
			require.True(t, ok)
		}
	}

	stats, err := stores.Sessions.GetStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalGames)
	assert.Equal(t, 1, stats.TotalWins)
	assert.Equal(t, 2, stats.TotalLosses)
	assert.Equal(t, 1, stats.PendingGames)
	assert.Equal(t, int64(1200), stats.TotalEarnings)
	assert.Equal(t, int64(2500), stats.TotalLossAmount)
	assert.Equal(t, 25.0, stats.WinRate())

	empty, err := stores.Sessions.GetStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalGames)

	global, err := stores.Sessions.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), global.TotalUsers)
	assert.Equal(t, int64(4), global.TotalGames)
	assert.Equal(t, int64(3), global.CompletedGames)
	assert.Equal(t, int64(1), global.PendingGames)
	assert.Equal(t, int64(2500), global.HouseRevenue)
	assert.Equal(t, int64(1200), global.TotalPaidOut)
}

func testBalanceHistory(t *testing.T, stores Stores) {
	ctx := context.Background()
	user := createUser(t, stores, "ledger", 100000)
	sessionID := uuid.New()

	first := CreateTestBalanceHistory(user.ID, entities.TransactionTypeBetPlaced)
	first.RelatedSessionID = &sessionID
	require.NoError(t, stores.History.Record(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := CreateTestBalanceHistory(user.ID, entities.TransactionTypeBetPayout)
	second.TransactionMetadata = nil
	require.NoError(t, stores.History.Record(ctx, second))

	entries, err := stores.History.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byType := map[entities.TransactionType]*entities.BalanceHistory{}
	for _, e := range entries {
		byType[e.TransactionType] = e
	}
	placed := byType[entities.TransactionTypeBetPlaced]
	require.NotNil(t, placed)
	require.NotNil(t, placed.RelatedSessionID)
	assert.Equal(t, sessionID, *placed.RelatedSessionID)
	assert.Equal(t, true, placed.TransactionMetadata["test"])
	assert.Equal(t, int64(-1000), placed.ChangeAmount)

	limited, err := stores.History.GetByUser(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
