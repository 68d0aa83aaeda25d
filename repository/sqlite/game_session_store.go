package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

const gameSessionColumns = `id, user_id, bet_amount, target_barriers, difficulty, is_completed,
	barriers_passed, payout, expired, started_at, settled_at`

// GameSessionStore persists game sessions in SQLite
type GameSessionStore struct {
	db *sql.DB
}

// NewGameSessionStore creates a session store on an open SQLite handle
func NewGameSessionStore(db *sql.DB) *GameSessionStore {
	return &GameSessionStore{db: db}
}

// Create inserts a new open session
func (s *GameSessionStore) Create(ctx context.Context, session *entities.GameSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	session.StartedAt = session.StartedAt.UTC().Truncate(time.Millisecond)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_sessions (id, user_id, bet_amount, target_barriers, difficulty, is_completed, expired, started_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?)`,
		session.ID.String(),
		session.UserID.String(),
		session.BetAmount,
		session.TargetBarriers,
		string(session.Difficulty),
		toMillis(session.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create game session for user %s: %w", session.UserID, err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (s *GameSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error) {
	session, err := scanGameSession(s.db.QueryRowContext(ctx,
		`SELECT `+gameSessionColumns+` FROM game_sessions WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session %s: %w", id, err)
	}
	return session, nil
}

// Settle performs the Open to Completed transition. Only one caller can win it.
func (s *GameSessionStore) Settle(ctx context.Context, settlement *entities.Settlement) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE game_sessions
		 SET is_completed = 1, barriers_passed = ?, payout = ?, expired = ?, settled_at = ?
		 WHERE id = ? AND user_id = ? AND is_completed = 0`,
		settlement.BarriersPassed,
		settlement.Payout,
		boolToInt(settlement.Expired),
		toMillis(settlement.SettledAt),
		settlement.SessionID.String(),
		settlement.UserID.String(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle game session %s: %w", settlement.SessionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for game session %s: %w", settlement.SessionID, err)
	}
	return affected == 1, nil
}

// GetByUser returns a page of a user's sessions ordered by start time
func (s *GameSessionStore) GetByUser(ctx context.Context, userID uuid.UUID, q entities.HistoryQuery) ([]*entities.GameSession, error) {
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameSessionColumns+`
		 FROM game_sessions
		 WHERE user_id = ?
		 ORDER BY started_at `+order+`, id `+order+`
		 LIMIT ? OFFSET ?`,
		userID.String(), q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get game sessions for user %s: %w", userID, err)
	}
	return collectGameSessions(rows)
}

// GetOpenStartedBefore returns open sessions started before the cutoff, oldest first
func (s *GameSessionStore) GetOpenStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.GameSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameSessionColumns+`
		 FROM game_sessions
		 WHERE is_completed = 0 AND started_at < ?
		 ORDER BY started_at
		 LIMIT ?`,
		toMillis(cutoff), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get open game sessions before %s: %w", cutoff, err)
	}
	return collectGameSessions(rows)
}

// DeleteCompletedByUser removes a user's settled sessions
func (s *GameSessionStore) DeleteCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM game_sessions WHERE user_id = ? AND is_completed = 1`, userID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed game sessions for user %s: %w", userID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for user %s: %w", userID, err)
	}
	return affected, nil
}

// GetStats returns session statistics for a user
func (s *GameSessionStore) GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error) {
	var stats entities.SessionStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_completed = 1 AND payout > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 1 AND payout = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payout > 0 THEN payout ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 1 AND payout = 0 THEN bet_amount ELSE 0 END), 0)
		FROM game_sessions
		WHERE user_id = ?`, userID.String(),
	).Scan(
		&stats.TotalGames,
		&stats.TotalWins,
		&stats.TotalLosses,
		&stats.PendingGames,
		&stats.TotalEarnings,
		&stats.TotalLossAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for user %s: %w", userID, err)
	}
	return &stats, nil
}

// GetGlobalStats returns session statistics across all users
func (s *GameSessionStore) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	var stats entities.GlobalStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_completed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_completed = 1 AND payout = 0 THEN bet_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payout > 0 THEN payout ELSE 0 END), 0)
		FROM game_sessions`,
	).Scan(
		&stats.TotalUsers,
		&stats.TotalGames,
		&stats.CompletedGames,
		&stats.PendingGames,
		&stats.HouseRevenue,
		&stats.TotalPaidOut,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get global game stats: %w", err)
	}
	return &stats, nil
}

func scanGameSession(row rowScanner) (*entities.GameSession, error) {
	var (
		session        entities.GameSession
		id, userID     string
		difficulty     string
		isCompleted    int
		barriersPassed sql.NullInt64
		payout         sql.NullInt64
		expired        int
		startedAt      int64
		settledAt      sql.NullInt64
	)
	err := row.Scan(&id, &userID, &session.BetAmount, &session.TargetBarriers, &difficulty, &isCompleted,
		&barriersPassed, &payout, &expired, &startedAt, &settledAt)
	if err != nil {
		return nil, err
	}

	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid game session id %q: %w", id, err)
	}
	if session.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	session.Difficulty = entities.Difficulty(difficulty)
	session.IsCompleted = isCompleted != 0
	session.Expired = expired != 0
	session.StartedAt = fromMillis(startedAt)
	if barriersPassed.Valid {
		value := int(barriersPassed.Int64)
		session.BarriersPassed = &value
	}
	if payout.Valid {
		value := payout.Int64
		session.Payout = &value
	}
	if settledAt.Valid {
		value := fromMillis(settledAt.Int64)
		session.SettledAt = &value
	}
	return &session, nil
}

func collectGameSessions(rows *sql.Rows) ([]*entities.GameSession, error) {
	defer rows.Close()

	var sessions []*entities.GameSession
	for rows.Next() {
		session, err := scanGameSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game sessions: %w", err)
	}
	return sessions, nil
}
