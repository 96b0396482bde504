// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rhinobase/workshop/migrations"
)

// OpenSQLite returns an in-memory SQLite database with all migrations applied.
// The handle is closed when the test ends.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Up(context.Background(), db, goose.DialectSQLite3)
	require.NoError(t, err, "apply sqlite migrations")
	return db
}
