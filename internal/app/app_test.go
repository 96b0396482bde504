package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinobase/workshop/internal/config"
	"github.com/rhinobase/workshop/internal/logging"
)

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		App: config.AppConfig{Env: "test", Version: "dev"},
		DB: config.DBConfig{
			Driver:      config.DriverSQLite,
			SQLitePath:  filepath.Join(t.TempDir(), "todo.db"),
			AutoMigrate: true,
		},
	}

	a, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)

	w := do(t, a.Router(), http.MethodPost, "/todos", map[string]string{"task": "persisted"})
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, a.Close(ctx))

	// Reopening applies no migrations twice and sees the stored row.
	a, err = New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close(ctx)
	list := listTasks(t, a.Router())
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].Task)
}
