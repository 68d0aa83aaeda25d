package services

import (
	"context"
	"fmt"
	"strings"

	"barrierbet/domain"
	"barrierbet/domain/entities"
	"barrierbet/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// User listing limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type adminService struct {
	userRepo    interfaces.UserRepository
	sessionRepo interfaces.GameSessionRepository
	ledger      interfaces.AccountLedger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo interfaces.UserRepository, sessionRepo interfaces.GameSessionRepository, ledger interfaces.AccountLedger) interfaces.AdminService {
	return &adminService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ledger:      ledger,
	}
}

func (s *adminService) ListUsers(ctx context.Context, page, pageSize int) (*entities.UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	users, err := s.userRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &entities.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *adminService) GetStatistics(ctx context.Context) (*entities.GlobalStats, error) {
	stats, err := s.sessionRepo.GetGlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get global stats: %w", err)
	}
	return stats, nil
}

// AdjustBalance credits a positive amount or debits a negative one through
// the ledger, so the adjustment shows up in balance history like any other.
func (s *adminService) AdjustBalance(ctx context.Context, adminID, userID uuid.UUID, amount int64, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if amount == 0 {
		return 0, fmt.Errorf("%w: adjustment cannot be zero", domain.ErrInvalidAmount)
	}
	if reason == "" {
		return 0, fmt.Errorf("%w: adjustment requires a reason", domain.ErrInvalidAmount)
	}

	memo := entities.LedgerMemo{
		TransactionType: entities.TransactionTypeAdminAdjustment,
		Metadata: map[string]any{
			"admin_id": adminID.String(),
			"reason":   reason,
		},
	}

	var newBalance int64
	var err error
	if amount > 0 {
		newBalance, err = s.ledger.Credit(ctx, userID, amount, memo)
	} else {
		newBalance, err = s.ledger.Debit(ctx, userID, -amount, memo)
	}
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"adminID":    adminID,
		"userID":     userID,
		"amount":     amount,
		"reason":     reason,
		"newBalance": newBalance,
	}).Info("Balance adjusted by admin")
	return newBalance, nil
}
