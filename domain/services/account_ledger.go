package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"
	"barrierbet/domain/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	ledgerOpDebit  = "debit"
	ledgerOpCredit = "credit"

	// DefaultLedgerMaxAttempts bounds the compare-and-swap loop when no limit is configured
	DefaultLedgerMaxAttempts = 8
)

// errVersionConflict marks a lost compare-and-swap; it never leaves the ledger
var errVersionConflict = errors.New("balance version changed")

type accountLedger struct {
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	observer           interfaces.LedgerObserver
	maxAttempts        int
}

// NewAccountLedger creates a ledger that mutates balances with optimistic
// compare-and-swap updates. observer may be nil.
func NewAccountLedger(userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, observer interfaces.LedgerObserver, maxAttempts int) interfaces.AccountLedger {
	if maxAttempts < 1 {
		maxAttempts = DefaultLedgerMaxAttempts
	}
	return &accountLedger{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		observer:           observer,
		maxAttempts:        maxAttempts,
	}
}

func (l *accountLedger) Debit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive, got %d", domain.ErrInvalidAmount, amount)
	}

	newBalance, err := l.apply(ctx, ledgerOpDebit, userID, -amount, memo)
	if err != nil {
		return 0, fmt.Errorf("failed to debit %d from user %s: %w", amount, userID, err)
	}
	return newBalance, nil
}

func (l *accountLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64, memo entities.LedgerMemo) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: credit amount cannot be negative, got %d", domain.ErrInvalidAmount, amount)
	}
	if amount == 0 {
		return l.GetBalance(ctx, userID)
	}

	newBalance, err := l.apply(ctx, ledgerOpCredit, userID, amount, memo)
	if err != nil {
		return 0, fmt.Errorf("failed to credit %d to user %s: %w", amount, userID, err)
	}
	return newBalance, nil
}

func (l *accountLedger) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, domain.ErrUserNotFound
	}
	return user.Balance, nil
}

// apply moves the balance by change. Each attempt re-reads the account and
// swaps against the version it saw; only a lost swap is retried.
func (l *accountLedger) apply(ctx context.Context, operation string, userID uuid.UUID, change int64, memo entities.LedgerMemo) (int64, error) {
	var before, after int64
	attempts := 0

	attempt := func() error {
		attempts++
		user, err := l.userRepo.GetByID(ctx, userID)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to get user: %w", err))
		}
		if user == nil {
			return backoff.Permanent(domain.ErrUserNotFound)
		}

		switch {
		case change < 0 && !user.CanAfford(-change):
			return backoff.Permanent(domain.ErrInsufficientFunds)
		case change > 0 && user.Balance > entities.MaxBalance-change:
			return backoff.Permanent(fmt.Errorf("%w: balance would exceed %s", domain.ErrInvalidAmount, utils.FormatAmount(entities.MaxBalance)))
		}
		next := user.Balance + change

		swapped, err := l.userRepo.CompareAndSwapBalance(ctx, userID, user.Version, next)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to update balance: %w", err))
		}
		if !swapped {
			return errVersionConflict
		}

		before, after = user.Balance, next
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if l.observer != nil {
			l.observer.RecordLedgerConflict(operation)
		}
		log.WithFields(log.Fields{
			"userID":    userID,
			"operation": operation,
			"attempt":   attempts,
			"wait":      wait,
		}).Debug("Balance version conflict, retrying")
	}

	err := backoff.RetryNotify(attempt, l.retryPolicy(ctx), notify)
	if errors.Is(err, errVersionConflict) {
		if l.observer != nil {
			l.observer.RecordLedgerExhausted(operation)
		}
		log.WithFields(log.Fields{
			"userID":    userID,
			"operation": operation,
			"attempts":  attempts,
		}).Warn("Ledger retries exhausted")
		return 0, domain.ErrStorageConflict
	}
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"userID":          userID,
		"operation":       operation,
		"oldBalance":      before,
		"newBalance":      after,
		"transactionType": memo.TransactionType,
	}).Info("Balance updated")

	history := &entities.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        change,
		TransactionType:     memo.TransactionType,
		TransactionMetadata: memo.Metadata,
		RelatedSessionID:    memo.RelatedSessionID,
	}
	// The balance is already committed; a history failure must not undo it.
	if err := utils.RecordBalanceChange(ctx, l.balanceHistoryRepo, l.eventPublisher, history); err != nil {
		log.WithFields(log.Fields{
			"userID":    userID,
			"operation": operation,
			"error":     err,
		}).Error("Failed to record balance change")
	}

	return after, nil
}

func (l *accountLedger) retryPolicy(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 2 * time.Millisecond
	expo.MaxInterval = 50 * time.Millisecond
	expo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(l.maxAttempts-1)), ctx)
}
