package repository

import (
	"context"
	"errors"
	"fmt"

	"barrierbet/database"
	"barrierbet/domain"
	"barrierbet/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, password_hash, balance, version, is_admin, created_at, updated_at`

// UserRepository implements the UserRepository interface on Postgres
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %q: %w", username, err)
	}
	return user, nil
}

// Create inserts a new user with its starting balance
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, username, password_hash, balance, version, is_admin)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING version, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Balance,
		user.IsAdmin,
	).Scan(&user.Version, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create user %q: %w", user.Username, domain.ErrUsernameTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// CompareAndSwapBalance writes newBalance only if the row still carries expectedVersion
func (r *UserRepository) CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance int64) (bool, error) {
	query := `
		UPDATE users
		SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`
	result, err := r.q.Exec(ctx, query, newBalance, id, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("failed to swap balance for user %s at version %d: %w", id, expectedVersion, err)
	}
	return result.RowsAffected() == 1, nil
}

// UpdateUsername renames a user
func (r *UserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	query := `UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, username, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to rename user %s: %w", id, domain.ErrUsernameTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to rename user %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to rename user %s: %w", id, domain.ErrUserNotFound)
	}
	return nil
}

// List returns a page of users ordered by creation time
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`

	rows, err := r.q.Query(ctx, query, limit, offset)
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
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Balance,
		&user.Version,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
