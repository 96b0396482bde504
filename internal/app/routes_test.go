package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinobase/workshop/internal/config"
	"github.com/rhinobase/workshop/internal/dto"
	"github.com/rhinobase/workshop/internal/logging"
	"github.com/rhinobase/workshop/internal/repo"
	"github.com/rhinobase/workshop/internal/service"
	"github.com/rhinobase/workshop/internal/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc := service.NewTaskService(repo.NewSQLiteTaskRepo(testutil.OpenSQLite(t)), nil, logging.Discard())
	cfg := config.Config{App: config.AppConfig{Env: "test", Version: "v-test"}}
	return NewRouter(cfg, svc, logging.Discard())
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func listTasks(t *testing.T, r http.Handler) []dto.TaskResponse {
	t.Helper()
	w := do(t, r, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func createTask(t *testing.T, r http.Handler, text string) dto.TaskResponse {
	t.Helper()
	w := do(t, r, http.MethodPost, "/todos", map[string]string{"task": text})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestTodos_ListEmptyIsArray(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTodos_CreateThenList(t *testing.T) {
	r := newTestRouter(t)

	created := createTask(t, r, "Buy milk")
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Task)
	assert.False(t, created.Status)

	list := listTasks(t, r)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Buy milk", list[0].Task)
	assert.False(t, list[0].Status)
}

func TestTodos_CreateLegacyTextField(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/todos", `{"text":"from old client"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	list := listTasks(t, r)
	require.Len(t, list, 1)
	assert.Equal(t, "from old client", list[0].Task)
}

func TestTodos_CreateValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "blank", body: `{"task":"   "}`},
		{name: "empty", body: `{"task":""}`},
		{name: "missing", body: `{}`},
		{name: "malformed", body: `{"task":`},
		{name: "wrong type", body: `{"task":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/todos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
	assert.Empty(t, listTasks(t, r))
}

func TestTodos_DuplicateTextDistinctIDs(t *testing.T) {
	r := newTestRouter(t)

	a := createTask(t, r, "same")
	b := createTask(t, r, "same")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, listTasks(t, r), 2)
}

func TestTodos_UpdateStatus(t *testing.T) {
	r := newTestRouter(t)
	target := createTask(t, r, "target")
	other := createTask(t, r, "other")

	w := do(t, r, http.MethodPut, "/todos/"+target.ID, map[string]bool{"status": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	for _, task := range listTasks(t, r) {
		switch task.ID {
		case target.ID:
			assert.True(t, task.Status)
		case other.ID:
			assert.False(t, task.Status)
		}
	}

	w = do(t, r, http.MethodPut, "/todos/"+target.ID, map[string]bool{"status": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, listTasks(t, r)[0].Status)
}

func TestTodos_UpdateStatusErrors(t *testing.T) {
	r := newTestRouter(t)
	existing := createTask(t, r, "existing")

	w := do(t, r, http.MethodPut, "/todos/"+uuid.NewString(), map[string]bool{"status": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/todos/not-a-uuid", map[string]bool{"status": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/todos/"+existing.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "status is required")

	list := listTasks(t, r)
	require.Len(t, list, 1)
	assert.False(t, list[0].Status)
}

func TestTodos_Delete(t *testing.T) {
	r := newTestRouter(t)
	keep := createTask(t, r, "keep")
	gone := createTask(t, r, "gone")

	w := do(t, r, http.MethodDelete, "/todos/"+gone.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	list := listTasks(t, r)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	w = do(t, r, http.MethodDelete, "/todos/"+gone.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "second delete is NotFound")
	assert.Len(t, listTasks(t, r), 1)

	w = do(t, r, http.MethodDelete, "/todos/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodos_APIPrefix(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/todos", map[string]string{"task": "via prefix"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, listTasks(t, r), 1)
}

func TestHealthAndVersion(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"env":"test"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"v-test"}`, w.Body.String())
}

func TestSwaggerDoc(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/swagger-doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/todos/{id}")
}

func TestTodos_CreateKeepsTextAsSent(t *testing.T) {
	r := newTestRouter(t)

	created := createTask(t, r, "  Buy milk ")
	assert.Equal(t, "  Buy milk ", created.Task)

	list := listTasks(t, r)
	require.Len(t, list, 1)
	assert.Equal(t, "  Buy milk ", list[0].Task)
}

func TestNewRouter_LeavesGinModeAlone(t *testing.T) {
	before := gin.Mode()
	svc := service.NewTaskService(repo.NewSQLiteTaskRepo(testutil.OpenSQLite(t)), nil, logging.Discard())
	NewRouter(config.Config{App: config.AppConfig{Env: "production"}}, svc, logging.Discard())
	assert.Equal(t, before, gin.Mode())
}
