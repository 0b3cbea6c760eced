package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDBInMemory(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	// Migrations ran: both tables are queryable.
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM entries`).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM user_lexicon`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpenDBCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "gutlog.db")
	database, err := OpenDB(path)
	require.NoError(t, err)
	defer database.Close()

	assert.FileExists(t, path)
}

func TestMigrateIsIdempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database))
	require.NoError(t, Migrate(database))
}

func TestWithinTxCommits(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	uow := NewSQLiteUnitOfWork(database)
	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO user_lexicon (user_id, phrase, intent, last_seen)
			VALUES ('u1', 'oats', 'food', '2026-03-14T12:00:00Z')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM user_lexicon`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	boom := errors.New("boom")
	uow := NewSQLiteUnitOfWork(database)
	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_lexicon (user_id, phrase, intent, last_seen)
			VALUES ('u1', 'oats', 'food', '2026-03-14T12:00:00Z')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM user_lexicon`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	uow := NewSQLiteUnitOfWork(database)
	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
			panic("boom")
		})
	})
}
