package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/web3profile/internal/db"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/repository/sqlite"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dbPath, logLevel = "", ""
	out := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	require.NoError(t, closeApp())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_PATH", path)
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("RPC_URLS", "http://127.0.0.1:1")
	return path
}

func TestSearchesCommand(t *testing.T) {
	path := setupEnv(t)

	database, err := db.Open(path)
	require.NoError(t, err)
	repo := sqlite.NewSearchRepository(database.DB)
	ctx := context.Background()
	_, err = repo.Record(ctx, "a.eth", "0xaaaa", "a.eth")
	require.NoError(t, err)
	_, err = repo.Record(ctx, "b.eth", "0xbbbb", "b.eth")
	require.NoError(t, err)
	_, err = repo.Record(ctx, "b.eth", "0xbbbb", "b.eth")
	require.NoError(t, err)
	require.NoError(t, database.Close())

	out, err := run(t, "searches", "--popular", "-n", "1")
	require.NoError(t, err)

	var entries []models.SearchEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "0xbbbb", entries[0].Address)
	assert.Equal(t, 2, entries[0].Hits)
}

func TestPurgeCacheCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "purge-cache")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 expired entries\n", out)

	t.Setenv("CACHE_BACKEND", "off")
	out, err = run(t, "purge-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to purge")
}

func TestResolveCommand_InvalidInput(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "resolve", "0x12")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("CACHE_BACKEND", "mongo")

	_, err := run(t, "searches")
	assert.Error(t, err)
}
