package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("in-memory sqlite", func(t *testing.T) {
		db, err := New(WithMaxOpenConns(1))
		require.NoError(t, err)
		defer db.Close()

		var one int
		require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
		assert.Equal(t, 1, one)
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("sqlite file", func(t *testing.T) {
		db, err := New(WithDataSource(filepath.Join(t.TempDir(), "test.db")))
		require.NoError(t, err)
		assert.NoError(t, db.Close())
	})

	t.Run("empty driver", func(t *testing.T) {
		_, err := New(WithDriver(""))
		assert.ErrorContains(t, err, "driver cannot be empty")
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := New(WithDriver("mysql"))
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("empty data source", func(t *testing.T) {
		_, err := New(WithDataSource(""))
		assert.ErrorContains(t, err, "data source cannot be empty")
	})

	t.Run("retries until attempts exhausted", func(t *testing.T) {
		var retries int
		_, err := New(
			WithDriver(DriverPostgres),
			WithDataSource("postgres://nobody@127.0.0.1:1/none?connect_timeout=1"),
			WithRetry(3, time.Millisecond),
			WithRetryNotify(func(err error, wait time.Duration) { retries++ }),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 2, retries)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewContext(ctx,
			WithDriver(DriverPostgres),
			WithDataSource("postgres://nobody@127.0.0.1:1/none?connect_timeout=1"),
			WithRetry(5, time.Millisecond),
		)
		assert.Error(t, err)
	})
}
