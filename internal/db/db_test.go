package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/db"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	d, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Ping(context.Background()))

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
	require.NoError(t, d.Close())

	// Reopening must not re-run anything.
	d, err = db.Open(path)
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)

	for _, table := range []string{"search_history", "cache_entries"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}
