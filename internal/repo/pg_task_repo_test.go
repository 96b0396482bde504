package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinobase/workshop/migrations"
)

// newPGRepo connects to TEST_PG_DSN and empties the tasks table.
func newPGRepo(t *testing.T) *PGTaskRepo {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	_, err = migrations.Up(ctx, sqlDB, goose.DialectPostgres)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE tasks`)
	require.NoError(t, err)
	return NewPGTaskRepo(pool)
}

func TestPGTaskRepo_Lifecycle(t *testing.T) {
	r := newPGRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, "Buy milk")
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.False(t, created.Status)

	require.NoError(t, r.SetStatus(ctx, created.ID, true))
	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Status)

	require.NoError(t, r.Delete(ctx, created.ID))
	assert.ErrorIs(t, r.Delete(ctx, created.ID), ErrNotFound)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPGTaskRepo_NotFound(t *testing.T) {
	r := newPGRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.SetStatus(ctx, uuid.NewString(), true), ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, uuid.NewString()), ErrNotFound)
	_, err := r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}
