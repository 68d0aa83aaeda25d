package utils

import (
	"context"
	"fmt"

	"barrierbet/domain/entities"
	"barrierbet/domain/events"
	"barrierbet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the matching
// events. Every successful ledger mutation goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
		SessionID:       history.RelatedSessionID,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	// Also emit user created event if this is initial balance
	if history.TransactionType == entities.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			userCreatedEvent := events.UserCreatedEvent{
				UserID:         history.UserID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			}
			if err := eventPublisher.Publish(userCreatedEvent); err != nil {
				log.WithError(err).Error("Failed to publish user created event")
			}
		}
	}

	return nil
}
