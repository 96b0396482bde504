package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinobase/workshop/internal/app"
	"github.com/rhinobase/workshop/internal/config"
	"github.com/rhinobase/workshop/internal/logging"
	"github.com/rhinobase/workshop/internal/repo"
	"github.com/rhinobase/workshop/internal/service"
	"github.com/rhinobase/workshop/internal/testutil"
)

func newServer(t *testing.T) string {
	t.Helper()
	svc := service.NewTaskService(repo.NewSQLiteTaskRepo(testutil.OpenSQLite(t)), nil, logging.Discard())
	srv := httptest.NewServer(app.NewRouter(config.Config{App: config.AppConfig{Env: "test"}}, svc, logging.Discard()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var createdID = regexp.MustCompile(`created (\S+)`)

func TestCLI_AddListDoneRemove(t *testing.T) {
	server := newServer(t)

	out, err := execute(t, server, "list")
	require.NoError(t, err)
	assert.Equal(t, "No tasks.\n", out)

	out, err = execute(t, server, "add", "Buy", "milk")
	require.NoError(t, err)
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = execute(t, server, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "Buy milk")

	_, err = execute(t, server, "done", id)
	require.NoError(t, err)
	out, err = execute(t, server, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	_, err = execute(t, server, "undo", id)
	require.NoError(t, err)
	out, err = execute(t, server, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	out, err = execute(t, server, "rm", id)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id+"\n", out)

	out, err = execute(t, server, "list")
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, id))
}

func TestCLI_NotFound(t *testing.T) {
	server := newServer(t)
	missing := uuid.NewString()

	_, err := execute(t, server, "rm", missing)
	assert.EqualError(t, err, "task "+missing+" not found")

	_, err = execute(t, server, "done", missing)
	assert.EqualError(t, err, "task "+missing+" not found")
}

func TestCLI_Args(t *testing.T) {
	server := newServer(t)

	_, err := execute(t, server, "add")
	assert.Error(t, err)

	_, err = execute(t, server, "add", "  ")
	assert.EqualError(t, err, "task text is empty")

	_, err = execute(t, "not a url", "list")
	assert.Error(t, err)
}

func TestTUILogger_KeepsLogsOffTheTerminal(t *testing.T) {
	logger, closeLog, err := tuiLogger("", false)
	require.NoError(t, err)
	logger.Error("dropped")
	require.NoError(t, closeLog())

	path := filepath.Join(t.TempDir(), "tui.log")
	logger, closeLog, err = tuiLogger(path, false)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Error("mutation failed", "id", "42")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mutation failed")
	assert.NotContains(t, string(data), "hidden")
}
