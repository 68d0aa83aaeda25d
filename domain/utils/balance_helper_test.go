package utils

import (
	"context"
	"testing"

	"barrierbet/domain/entities"
	"barrierbet/domain/events"
	"barrierbet/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecordBalanceChange(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	sessionID := uuid.New()
	history := &entities.BalanceHistory{
		UserID:           uuid.New(),
		BalanceBefore:    10000,
		BalanceAfter:     9000,
		ChangeAmount:     -1000,
		TransactionType:  entities.TransactionTypeBetPlaced,
		RelatedSessionID: &sessionID,
	}

	mockBalanceHistoryRepo.On("Record", ctx, history).Return(nil)
	mockEventPublisher.On("Publish", mock.MatchedBy(func(event events.BalanceChangeEvent) bool {
		return event.UserID == history.UserID &&
			event.OldBalance == 10000 &&
			event.NewBalance == 9000 &&
			event.SessionID != nil && *event.SessionID == sessionID
	})).Return(nil)

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.NoError(t, err)

	mockBalanceHistoryRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestRecordBalanceChangeUserCreatedEvent(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.MatchedBy(func(event events.Event) bool {
		_, ok := event.(events.BalanceChangeEvent)
		return ok
	})).Return(nil).Once()
	mockEventPublisher.On("Publish", mock.MatchedBy(func(event events.Event) bool {
		created, ok := event.(events.UserCreatedEvent)
		return ok && created.Username == "runner" && created.InitialBalance == 100000
	})).Return(nil).Once()

	history := &entities.BalanceHistory{
		UserID:          uuid.New(),
		BalanceBefore:   0,
		BalanceAfter:    100000,
		ChangeAmount:    100000,
		TransactionType: entities.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": "runner",
		},
	}

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.NoError(t, err)

	mockBalanceHistoryRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestRecordBalanceChangeRepositoryError(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(assert.AnError)

	history := &entities.BalanceHistory{
		UserID:          uuid.New(),
		BalanceBefore:   1000,
		BalanceAfter:    1500,
		ChangeAmount:    500,
		TransactionType: entities.TransactionTypeBetPayout,
	}

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.ErrorIs(t, err, assert.AnError)

	// Event should not be published when repository fails
	mockEventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	mockBalanceHistoryRepo.AssertExpectations(t)
}

func TestRecordBalanceChangePublishErrorIsNotFatal(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.Anything).Return(assert.AnError)

	history := &entities.BalanceHistory{
		UserID:          uuid.New(),
		BalanceBefore:   1000,
		BalanceAfter:    2200,
		ChangeAmount:    1200,
		TransactionType: entities.TransactionTypeBetPayout,
	}

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.NoError(t, err)
	mockEventPublisher.AssertExpectations(t)
}
