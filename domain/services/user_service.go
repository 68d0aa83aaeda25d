package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type userService struct {
	userRepo    interfaces.UserRepository
	sessionRepo interfaces.GameSessionRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo interfaces.UserRepository, sessionRepo interfaces.GameSessionRepository) interfaces.UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// GetProfile returns the user together with their game statistics
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	stats, err := s.sessionRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	return &entities.Profile{
		User:  user,
		Stats: stats,
	}, nil
}

func (s *userService) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return err
	}

	if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to update username: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"username": username,
	}).Info("Username updated")
	return nil
}
