package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

// BalanceHistoryStore persists balance history in SQLite
type BalanceHistoryStore struct {
	db *sql.DB
}

// NewBalanceHistoryStore creates a balance history store on an open SQLite handle
func NewBalanceHistoryStore(db *sql.DB) *BalanceHistoryStore {
	return &BalanceHistoryStore{db: db}
}

// Record creates a new balance history entry
func (s *BalanceHistoryStore) Record(ctx context.Context, history *entities.BalanceHistory) error {
	var metadata sql.NullString
	if history.TransactionMetadata != nil {
		raw, err := json.Marshal(history.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO balance_history
		 (user_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, related_session_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		history.UserID.String(),
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		string(history.TransactionType),
		metadata,
		nullableUUID(history.RelatedSessionID),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record balance history for user %s: %w", history.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read balance history id: %w", err)
	}
	history.ID = id
	history.CreatedAt = createdAt
	return nil
}

// GetByUser returns the most recent balance history entries for a user
func (s *BalanceHistoryStore) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, balance_before, balance_after, change_amount,
		        transaction_type, transaction_metadata, related_session_id, created_at
		 FROM balance_history
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var histories []*entities.BalanceHistory
	for rows.Next() {
		var (
			history         entities.BalanceHistory
			rawUserID       string
			transactionType string
			metadata        sql.NullString
			relatedSession  sql.NullString
			createdAt       int64
		)
		err := rows.Scan(&history.ID, &rawUserID, &history.BalanceBefore, &history.BalanceAfter, &history.ChangeAmount,
			&transactionType, &metadata, &relatedSession, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		if history.UserID, err = uuid.Parse(rawUserID); err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", rawUserID, err)
		}
		history.TransactionType = entities.TransactionType(transactionType)
		history.CreatedAt = fromMillis(createdAt)
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &history.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		if relatedSession.Valid {
			sessionID, err := uuid.Parse(relatedSession.String)
			if err != nil {
				return nil, fmt.Errorf("invalid related session id %q: %w", relatedSession.String, err)
			}
			history.RelatedSessionID = &sessionID
		}

		histories = append(histories, &history)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance history: %w", err)
	}
	return histories, nil
}
