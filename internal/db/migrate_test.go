package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/pixaro/internal/db"
)

func TestMigrateUpDownAndStatus(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "nested", "app.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close(database) }()

	m, err := db.NewMigrator(database.DB, db.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	var tables []string
	err = database.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'goose%' AND name NOT LIKE 'sqlite%' ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"comments", "follows", "likes", "posts", "sessions", "users"}, tables)

	require.NoError(t, m.Down(ctx))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	states, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.True(t, states[0].Applied)
	assert.True(t, states[1].Applied)
	assert.False(t, states[2].Applied)
	assert.Equal(t, int64(3), states[2].Version)

	// Running again applies only what is pending
	require.NoError(t, db.Migrate(ctx, database.DB, db.DriverSQLite))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	assert.NoError(t, db.Ping(ctx, database))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(context.Background(), "mysql", "root@/pixaro")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	_, err = db.NewMigrator(nil, "mysql")
	assert.Error(t, err)
}

func TestOpenEnablesSQLiteForeignKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, dsn := range []string{
		filepath.Join(dir, "bare.db"),
		"file:" + filepath.Join(dir, "options.db") + "?_pragma=busy_timeout(5000)",
	} {
		database, err := db.Open(ctx, db.DriverSQLite, dsn)
		require.NoError(t, err, dsn)

		var enabled int
		require.NoError(t, database.Get(&enabled, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, enabled, dsn)
		require.NoError(t, db.Close(database))
	}

	_, err := db.Open(ctx, db.DriverSQLite, filepath.Join(dir, "off.db")+"?_pragma=foreign_keys(0)")
	assert.ErrorContains(t, err, "foreign keys are disabled")
}
