package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              uuid.UUID       `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedSessionID    *uuid.UUID      `db:"related_session_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

// LedgerMemo describes why a ledger operation happened. It is recorded in
// balance history and attached to balance change events.
type LedgerMemo struct {
	TransactionType  TransactionType
	RelatedSessionID *uuid.UUID
	Metadata         map[string]any
}

// IsPositiveChange returns true if the change amount is positive
func (bh *BalanceHistory) IsPositiveChange() bool {
	return bh.ChangeAmount > 0
}

// GetTransactionDescription returns a human-readable description of the transaction
func (bh *BalanceHistory) GetTransactionDescription() string {
	switch bh.TransactionType {
	case TransactionTypeBetPlaced:
		return "Bet placed"
	case TransactionTypeBetPayout:
		return "Bet payout"
	case TransactionTypeBetRefund:
		return "Bet refunded"
	case TransactionTypeInitial:
		return "Initial balance"
	case TransactionTypeAdminAdjustment:
		return "Balance adjusted by admin"
	default:
		return string(bh.TransactionType)
	}
}

// ValidateTransaction performs basic validation on the transaction
func (bh *BalanceHistory) ValidateTransaction() error {
	if bh.ChangeAmount == 0 && bh.TransactionType != TransactionTypeInitial {
		return errors.New("change amount cannot be zero")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}
	return nil
}
