package services

import (
	"context"
	"fmt"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/events"
	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// refundTimeout bounds the compensating credit after a failed session insert
	refundTimeout = 10 * time.Second

	expiryBatchSize = 100
)

type sessionSettlement struct {
	ledger         interfaces.AccountLedger
	sessionRepo    interfaces.GameSessionRepository
	eventPublisher interfaces.EventPublisher
}

// NewSessionSettlement creates the service that owns the session lifecycle
func NewSessionSettlement(ledger interfaces.AccountLedger, sessionRepo interfaces.GameSessionRepository, eventPublisher interfaces.EventPublisher) interfaces.SessionSettlement {
	return &sessionSettlement{
		ledger:         ledger,
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *sessionSettlement) PlaceBet(ctx context.Context, userID uuid.UUID, betAmount int64, targetBarriers int, difficulty string) (*entities.BetPlacement, error) {
	tier, ok := entities.ParseDifficulty(difficulty)
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidBet, difficulty)
	}
	if err := entities.ValidateBet(betAmount, targetBarriers, tier); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBet, err)
	}

	session := entities.NewGameSession(userID, betAmount, targetBarriers, tier)

	newBalance, err := s.ledger.Debit(ctx, userID, betAmount, entities.LedgerMemo{
		TransactionType:  entities.TransactionTypeBetPlaced,
		RelatedSessionID: &session.ID,
		Metadata: map[string]any{
			"target_barriers": targetBarriers,
			"difficulty":      tier.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.refundBet(ctx, session, err)
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":         userID,
		"sessionID":      session.ID,
		"betAmount":      betAmount,
		"targetBarriers": targetBarriers,
		"difficulty":     tier,
		"newBalance":     newBalance,
	}).Info("Bet placed")

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		UserID:         userID,
		SessionID:      session.ID,
		BetAmount:      betAmount,
		TargetBarriers: targetBarriers,
		Difficulty:     tier,
	}); err != nil {
		log.WithError(err).Error("Failed to publish bet placed event")
	}

	return &entities.BetPlacement{
		SessionID:  session.ID,
		NewBalance: newBalance,
	}, nil
}

// refundBet credits a debited bet back after the session could not be stored.
// It runs on a context detached from the request so a disconnecting client
// cannot leave the debit in place.
func (s *sessionSettlement) refundBet(ctx context.Context, session *entities.GameSession, cause error) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	fields := log.Fields{
		"userID":    session.UserID,
		"sessionID": session.ID,
		"amount":    session.BetAmount,
		"cause":     cause,
	}

	newBalance, err := s.ledger.Credit(refundCtx, session.UserID, session.BetAmount, entities.LedgerMemo{
		TransactionType:  entities.TransactionTypeBetRefund,
		RelatedSessionID: &session.ID,
		Metadata: map[string]any{
			"reason": "session_create_failed",
		},
	})
	if err != nil {
		fields["error"] = err
		log.WithFields(fields).Error("Failed to refund bet after session create failure")
		return
	}

	fields["newBalance"] = newBalance
	log.WithFields(fields).Warn("Refunded bet after session create failure")
}

func (s *sessionSettlement) SubmitResult(ctx context.Context, userID, sessionID uuid.UUID, barriersPassed int, won bool) (*entities.SettlementResult, error) {
	if barriersPassed < 0 {
		return nil, fmt.Errorf("%w: barriers passed cannot be negative", domain.ErrInvalidBet)
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if !session.IsOwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}
	if session.IsCompleted {
		return nil, domain.ErrAlreadySettled
	}

	payout := session.CalculatePayout(barriersPassed, won)

	settled, err := s.sessionRepo.Settle(ctx, &entities.Settlement{
		SessionID:      session.ID,
		UserID:         userID,
		BarriersPassed: barriersPassed,
		Payout:         payout,
		SettledAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle game session: %w", err)
	}
	if !settled {
		return nil, domain.ErrAlreadySettled
	}

	var newBalance int64
	if payout > 0 {
		newBalance, err = s.ledger.Credit(ctx, userID, payout, entities.LedgerMemo{
			TransactionType:  entities.TransactionTypeBetPayout,
			RelatedSessionID: &session.ID,
			Metadata: map[string]any{
				"barriers_passed": barriersPassed,
				"difficulty":      session.Difficulty.String(),
				"multiplier":      session.Difficulty.Multiplier(),
			},
		})
		if err != nil {
			log.WithFields(log.Fields{
				"userID":    userID,
				"sessionID": session.ID,
				"payout":    payout,
				"error":     err,
			}).Error("Session settled but payout credit failed")
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
	} else {
		newBalance, err = s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"userID":         userID,
		"sessionID":      session.ID,
		"barriersPassed": barriersPassed,
		"won":            won,
		"payout":         payout,
		"newBalance":     newBalance,
	}).Info("Game session settled")

	s.publishSettled(session, barriersPassed, payout, false)

	return &entities.SettlementResult{
		SessionID:  session.ID,
		Payout:     payout,
		NewBalance: newBalance,
	}, nil
}

// ExpireStaleSessions settles every open session started more than olderThan
// ago as a loss. Sessions settled by their players in the meantime are skipped.
func (s *sessionSettlement) ExpireStaleSessions(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("expiry age must be positive, got %s", olderThan)
	}
	cutoff := time.Now().UTC().Add(-olderThan)

	expired := 0
	for {
		stale, err := s.sessionRepo.GetOpenStartedBefore(ctx, cutoff, expiryBatchSize)
		if err != nil {
			return expired, fmt.Errorf("failed to get stale sessions: %w", err)
		}

		for _, session := range stale {
			settled, err := s.sessionRepo.Settle(ctx, &entities.Settlement{
				SessionID:      session.ID,
				UserID:         session.UserID,
				BarriersPassed: 0,
				Payout:         0,
				Expired:        true,
				SettledAt:      time.Now().UTC(),
			})
			if err != nil {
				return expired, fmt.Errorf("failed to expire session %s: %w", session.ID, err)
			}
			if !settled {
				continue
			}
			expired++
			s.publishSettled(session, 0, 0, true)
		}

		if len(stale) < expiryBatchSize {
			break
		}
	}

	if expired > 0 {
		log.WithFields(log.Fields{
			"expired": expired,
			"cutoff":  cutoff,
		}).Info("Expired stale game sessions")
	}
	return expired, nil
}

func (s *sessionSettlement) publishSettled(session *entities.GameSession, barriersPassed int, payout int64, expired bool) {
	if err := s.eventPublisher.Publish(events.SessionSettledEvent{
		UserID:         session.UserID,
		SessionID:      session.ID,
		BetAmount:      session.BetAmount,
		Difficulty:     session.Difficulty,
		BarriersPassed: barriersPassed,
		Payout:         payout,
		Expired:        expired,
	}); err != nil {
		log.WithError(err).Error("Failed to publish session settled event")
	}
}
