package services

import (
	"context"
	"fmt"

	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// History paging limits
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

type statsService struct {
	sessionRepo interfaces.GameSessionRepository
}

// NewStatsService creates a new stats service
func NewStatsService(sessionRepo interfaces.GameSessionRepository) interfaces.StatsService {
	return &statsService{
		sessionRepo: sessionRepo,
	}
}

func (s *statsService) GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error) {
	stats, err := s.sessionRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}
	return stats, nil
}

// GetHistory returns a page of the user's sessions. Out of range limits fall
// back to the default; negative offsets start from the beginning.
func (s *statsService) GetHistory(ctx context.Context, userID uuid.UUID, query entities.HistoryQuery) ([]*entities.GameSession, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultHistoryLimit
	}
	if query.Limit > MaxHistoryLimit {
		query.Limit = MaxHistoryLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	sessions, err := s.sessionRepo.GetByUser(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get game history: %w", err)
	}
	return sessions, nil
}

// ClearHistory deletes the user's settled sessions. Open sessions are kept so
// they can still be settled.
func (s *statsService) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.sessionRepo.DeleteCompletedByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear game history: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"deleted": deleted,
	}).Info("Game history cleared")
	return deleted, nil
}
