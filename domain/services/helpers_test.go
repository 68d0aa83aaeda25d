package services

import (
	"context"
	"sync"
	"testing"

	"barrierbet/config"
	"barrierbet/domain/entities"
	"barrierbet/domain/events"
	"barrierbet/domain/interfaces"
	"barrierbet/domain/testhelpers"
	"barrierbet/repository/sqlite"
	"barrierbet/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Test constants for consistent test data
const (
	TestInitialBalance = int64(10000)
	TestBetAmount      = int64(1000)
	TestTargetBarriers = 5
)

// TestMocks aggregates all collaborator mocks for testing
type TestMocks struct {
	UserRepo           *testhelpers.MockUserRepository
	SessionRepo        *testhelpers.MockGameSessionRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	EventPublisher     *testhelpers.MockEventPublisher
	Ledger             *testhelpers.MockAccountLedger
	Hasher             *testhelpers.MockPasswordHasher
	Identity           *testhelpers.MockIdentityProvider
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:           &testhelpers.MockUserRepository{},
		SessionRepo:        &testhelpers.MockGameSessionRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
		Ledger:             &testhelpers.MockAccountLedger{},
		Hasher:             &testhelpers.MockPasswordHasher{},
		Identity:           &testhelpers.MockIdentityProvider{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.SessionRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Ledger.AssertExpectations(t)
	m.Hasher.AssertExpectations(t)
	m.Identity.AssertExpectations(t)
}

// ExpectBalanceRecorded allows any balance history write and its events
func (m *TestMocks) ExpectBalanceRecorded() {
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.EventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
}

// recordingObserver counts ledger contention callbacks
type recordingObserver struct {
	mu        sync.Mutex
	conflicts map[string]int
	exhausted map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		conflicts: make(map[string]int),
		exhausted: make(map[string]int),
	}
}

func (o *recordingObserver) RecordLedgerConflict(operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conflicts[operation]++
}

func (o *recordingObserver) RecordLedgerExhausted(operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exhausted[operation]++
}

// sqliteHarness wires the real services to a migrated in-memory SQLite store
type sqliteHarness struct {
	Users      *sqlite.UserStore
	Sessions   *sqlite.GameSessionStore
	History    *sqlite.BalanceHistoryStore
	Ledger     interfaces.AccountLedger
	Settlement interfaces.SessionSettlement
}

func newSQLiteHarness(t *testing.T) *sqliteHarness {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	db := testutil.SetupSQLiteDatabase(t)
	h := &sqliteHarness{
		Users:    sqlite.NewUserStore(db),
		Sessions: sqlite.NewGameSessionStore(db),
		History:  sqlite.NewBalanceHistoryStore(db),
	}
	publisher := nopPublisher{}
	// Generous attempt budget: a single SQLite connection serializes every
	// statement, so contention is high under the concurrency tests.
	h.Ledger = NewAccountLedger(h.Users, h.History, publisher, nil, 64)
	h.Settlement = NewSessionSettlement(h.Ledger, h.Sessions, publisher)
	return h
}

// createUser inserts a user with the given balance
func (h *sqliteHarness) createUser(t *testing.T, username string, balance int64) *entities.User {
	t.Helper()
	user := testutil.CreateTestUserWithBalance(username, balance)
	require.NoError(t, h.Users.Create(context.Background(), user))
	return user
}

func (h *sqliteHarness) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	balance, err := h.Ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return balance
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ events.Event) error { return nil }
