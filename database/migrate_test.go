package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAppliesMigrations(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "game_sessions", "balance_history"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	mg, err := NewSQLiteMigrator(db)
	require.NoError(t, err)
	status, err := mg.Status()
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.False(t, status.Dirty)
	assert.Equal(t, uint(3), status.Version)

	// Running again is a no-op
	require.NoError(t, mg.Up())
}

func TestSQLiteMigrateDownAndUp(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	mg, err := NewSQLiteMigrator(db)
	require.NoError(t, err)

	require.NoError(t, mg.Down(1))
	status, err := mg.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.Version)

	require.NoError(t, mg.Up())
	status, err = mg.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(3), status.Version)

	assert.Error(t, mg.Down(0))
}

func TestSQLiteBalanceConstraint(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO users (id, username, password_hash, balance, version, is_admin, created_at, updated_at)
		VALUES ('u1', 'negative', 'x', -1, 0, 0, 0, 0)`)
	assert.Error(t, err)
}
