package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"barrierbet/config"
	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"
	"barrierbet/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Credential limits. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

type authService struct {
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	hasher             interfaces.PasswordHasher
	identity           interfaces.IdentityProvider

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, hasher interfaces.PasswordHasher, identity interfaces.IdentityProvider) interfaces.AuthService {
	return &authService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		hasher:             hasher,
		identity:           identity,
	}
}

// ValidateUsername checks a display name: 3-32 letters, digits, '_', '.' or '-'
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-32 characters of letters, digits, '_', '.' or '-'", domain.ErrInvalidCredentials)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", domain.ErrInvalidCredentials, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, username, password string) (*entities.User, error) {
	return s.register(ctx, username, password, false)
}

// RegisterAdmin creates an operator account. Only the CLI calls it.
func (s *authService) RegisterAdmin(ctx context.Context, username, password string) (*entities.User, error) {
	return s.register(ctx, username, password, true)
}

func (s *authService) register(ctx context.Context, username, password string, isAdmin bool) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	startingBalance := config.Get().StartingBalance
	user := &entities.User{
		Username:     username,
		PasswordHash: hash,
		Balance:      startingBalance,
		IsAdmin:      isAdmin,
	}
	// The unique constraint still catches a concurrent registration
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &entities.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   0,
		BalanceAfter:    startingBalance,
		ChangeAmount:    startingBalance,
		TransactionType: entities.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		log.WithFields(log.Fields{
			"userID": user.ID,
			"error":  err,
		}).Error("Failed to record initial balance")
	}

	log.WithFields(log.Fields{
		"userID":   user.ID,
		"username": username,
		"balance":  startingBalance,
		"admin":    isAdmin,
	}).Info("User registered")

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*entities.LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// Unknown names pay for a hash comparison like wrong passwords do
		_ = s.hasher.Compare(s.decoy(), password)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.WithField("username", user.Username).Debug("Login rejected")
		}
		return nil, err
	}

	token, err := s.identity.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &entities.LoginResult{
		Token: token,
		User:  user,
	}, nil
}

// decoy returns a hash of a random secret at the hasher's cost
func (s *authService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			log.WithError(err).Warn("Failed to prepare decoy password hash")
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

func (s *authService) VerifyToken(ctx context.Context, token string) (*entities.Identity, error) {
	return s.identity.VerifyToken(ctx, token)
}
