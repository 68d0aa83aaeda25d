package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barrierbet/database"
	"barrierbet/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const gameSessionColumns = `id, user_id, bet_amount, target_barriers, difficulty, is_completed,
	barriers_passed, payout, expired, started_at, settled_at`

// GameSessionRepository implements the GameSessionRepository interface on Postgres
type GameSessionRepository struct {
	q Queryable
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository(db *database.DB) *GameSessionRepository {
	return &GameSessionRepository{q: db.Pool}
}

// Create inserts a new open session
func (r *GameSessionRepository) Create(ctx context.Context, session *entities.GameSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO game_sessions (id, user_id, bet_amount, target_barriers, difficulty, is_completed, started_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	_, err := r.q.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.BetAmount,
		session.TargetBarriers,
		string(session.Difficulty),
		session.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game session for user %s: %w", session.UserID, err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *GameSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GameSession, error) {
	query := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE id = $1`

	session, err := scanGameSession(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session %s: %w", id, err)
	}
	return session, nil
}

// Settle performs the Open to Completed transition. Only one caller can win it.
func (r *GameSessionRepository) Settle(ctx context.Context, settlement *entities.Settlement) (bool, error) {
	query := `
		UPDATE game_sessions
		SET is_completed = TRUE, barriers_passed = $3, payout = $4, expired = $5, settled_at = $6
		WHERE id = $1 AND user_id = $2 AND is_completed = FALSE
	`
	result, err := r.q.Exec(ctx, query,
		settlement.SessionID,
		settlement.UserID,
		settlement.BarriersPassed,
		settlement.Payout,
		settlement.Expired,
		settlement.SettledAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to settle game session %s: %w", settlement.SessionID, err)
	}
	return result.RowsAffected() == 1, nil
}

// GetByUser returns a page of a user's sessions ordered by start time
func (r *GameSessionRepository) GetByUser(ctx context.Context, userID uuid.UUID, q entities.HistoryQuery) ([]*entities.GameSession, error) {
	order := "DESC"
	if q.Ascending {
		order = "ASC"
	}
	query := `SELECT ` + gameSessionColumns + `
		FROM game_sessions
		WHERE user_id = $1
		ORDER BY started_at ` + order + `, id ` + order + `
		LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, userID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get game sessions for user %s: %w", userID, err)
	}
	return collectGameSessions(rows)
}

// GetOpenStartedBefore returns open sessions started before the cutoff, oldest first
func (r *GameSessionRepository) GetOpenStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.GameSession, error) {
	query := `SELECT ` + gameSessionColumns + `
		FROM game_sessions
		WHERE is_completed = FALSE AND started_at < $1
		ORDER BY started_at
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get open game sessions before %s: %w", cutoff, err)
	}
	return collectGameSessions(rows)
}

// DeleteCompletedByUser removes a user's settled sessions
func (r *GameSessionRepository) DeleteCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM game_sessions WHERE user_id = $1 AND is_completed = TRUE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed game sessions for user %s: %w", userID, err)
	}
	return result.RowsAffected(), nil
}

// GetStats returns session statistics for a user
func (r *GameSessionRepository) GetStats(ctx context.Context, userID uuid.UUID) (*entities.SessionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_completed AND payout > 0),
			COUNT(*) FILTER (WHERE is_completed AND payout = 0),
			COUNT(*) FILTER (WHERE NOT is_completed),
			COALESCE(SUM(payout) FILTER (WHERE payout > 0), 0),
			COALESCE(SUM(bet_amount) FILTER (WHERE is_completed AND payout = 0), 0)
		FROM game_sessions
		WHERE user_id = $1
	`

	var stats entities.SessionStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
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
func (r *GameSessionRepository) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_completed),
			COUNT(*) FILTER (WHERE NOT is_completed),
			COALESCE(SUM(bet_amount) FILTER (WHERE is_completed AND payout = 0), 0),
			COALESCE(SUM(payout) FILTER (WHERE payout > 0), 0)
		FROM game_sessions
	`

	var stats entities.GlobalStats
	err := r.q.QueryRow(ctx, query).Scan(
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

func scanGameSession(row pgx.Row) (*entities.GameSession, error) {
	var session entities.GameSession
	var difficulty string
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.BetAmount,
		&session.TargetBarriers,
		&difficulty,
		&session.IsCompleted,
		&session.BarriersPassed,
		&session.Payout,
		&session.Expired,
		&session.StartedAt,
		&session.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	session.Difficulty = entities.Difficulty(difficulty)
	return &session, nil
}

func collectGameSessions(rows pgx.Rows) ([]*entities.GameSession, error) {
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
