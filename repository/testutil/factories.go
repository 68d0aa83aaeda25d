package testutil

import (
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(username string) *entities.User {
	now := time.Now().UTC()
	return &entities.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "$2a$10$testhash",
		Balance:      100000,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(username string, balance int64) *entities.User {
	user := CreateTestUser(username)
	user.Balance = balance
	return user
}

// CreateTestGameSession creates an open test session
func CreateTestGameSession(userID uuid.UUID, betAmount int64, targetBarriers int, difficulty entities.Difficulty) *entities.GameSession {
	return entities.NewGameSession(userID, betAmount, targetBarriers, difficulty)
}

// CreateTestSettlement creates a settlement for a session
func CreateTestSettlement(session *entities.GameSession, barriersPassed int, payout int64) *entities.Settlement {
	return &entities.Settlement{
		SessionID:      session.ID,
		UserID:         session.UserID,
		BarriersPassed: barriersPassed,
		Payout:         payout,
		SettledAt:      time.Now().UTC(),
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID uuid.UUID, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   100000,
		BalanceAfter:    99000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
