package db

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsLoad(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, id, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init", id)

	sql, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TABLE links")
	assert.Contains(t, string(sql), "mime_type")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	defer down.Close()
}
