package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

const userColumns = `id, username, password_hash, balance, version, is_admin, created_at, updated_at`

// UserStore persists user accounts in SQLite
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store on an open SQLite handle
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByID retrieves a user by ID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %q: %w", username, err)
	}
	return user, nil
}

// Create inserts a new user with its starting balance
func (s *UserStore) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, balance, version, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		user.ID.String(),
		user.Username,
		user.PasswordHash,
		user.Balance,
		boolToInt(user.IsAdmin),
		toMillis(now),
		toMillis(now),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create user %q: %w", user.Username, domain.ErrUsernameTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}

	user.Version = 0
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// CompareAndSwapBalance writes newBalance only if the row still carries expectedVersion
func (s *UserStore) CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET balance = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		newBalance, toMillis(time.Now()), id.String(), expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to swap balance for user %s at version %d: %w", id, expectedVersion, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for user %s: %w", id, err)
	}
	return affected == 1, nil
}

// UpdateUsername renames a user
func (s *UserStore) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, updated_at = ? WHERE id = ?`,
		username, toMillis(time.Now()), id.String(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to rename user %s: %w", id, domain.ErrUsernameTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to rename user %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for user %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to rename user %s: %w", id, domain.ErrUserNotFound)
	}
	return nil
}

// List returns a page of users ordered by creation time
func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Count returns the number of users
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	var (
		user      entities.User
		id        string
		isAdmin   int
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Balance, &user.Version, &isAdmin, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	user.ID = parsed
	user.IsAdmin = isAdmin != 0
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}
