// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/pixaro/internal/db"
)

// NewDB opens a migrated SQLite database in the test's temp dir.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pixaro.db")
	database, err := db.Open(context.Background(), db.DriverSQLite, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(context.Background(), database.DB, db.DriverSQLite))

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
