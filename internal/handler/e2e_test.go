package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/attachment"
	"github.com/BuzzLyutic/taskcentral/internal/model"
	"github.com/BuzzLyutic/taskcentral/internal/repo"
	"github.com/BuzzLyutic/taskcentral/internal/schema"
	"github.com/BuzzLyutic/taskcentral/internal/service"
	"github.com/BuzzLyutic/taskcentral/internal/testutil"
)

func setupE2EServer(t *testing.T) *httptest.Server {
	pool, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)
	testutil.TruncateTables(t, pool)

	validator, err := schema.New()
	require.NoError(t, err)
	store, err := attachment.NewStore(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	taskService := service.NewTaskService(repo.NewTaskRepo(pool), repo.NewUserRepo(pool))
	router := NewRouter(
		NewTaskHandler(taskService, validator, logger),
		NewFileHandler(store, 100<<20, logger),
		logger,
		testOrigin,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func sendJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestE2E_TaskLifecycle(t *testing.T) {
	server := setupE2EServer(t)

	// 1. Create task
	resp := postJSON(t, server.URL+"/todos", map[string]any{"user_id": 1, "title": "Buy milk", "priority": "Alta"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	require.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.False(t, created.CreatedAt.IsZero())

	resp = postJSON(t, server.URL+"/todos", map[string]any{"user_id": 1, "title": "Later", "priority": "Baja", "deadline": "2030-01-15 00:00:00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// 2. Duplicate title is rejected by the store
	resp = postJSON(t, server.URL+"/todos", map[string]any{"user_id": 1, "title": "Buy milk"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 3. List for owner
	resp, err := http.Get(server.URL + "/todos/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	resp.Body.Close()
	require.Len(t, tasks, 2)
	assert.Equal(t, "2030-01-15", tasks[1].Deadline.String())

	// 4. Single task lives on its own path
	resp, err = http.Get(fmt.Sprintf("%s/todo/%d", server.URL, created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 5. Toggle completion
	resp = sendJSON(t, http.MethodPut, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), map[string]bool{"value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	resp.Body.Close()
	assert.True(t, toggled.Completed)

	// 6. Share with the second user
	resp = postJSON(t, server.URL+"/todos/shared_todos", map[string]any{
		"todo_id": created.ID, "user_id": 1, "shared_with_id": 2, "notes": "para ti",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var shared model.SharedTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shared))
	resp.Body.Close()
	assert.Equal(t, created.ID, shared.TaskID)

	// 7. Delete, then delete again
	resp = sendJSON(t, http.MethodDelete, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = sendJSON(t, http.MethodDelete, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("%s/todo/%d", server.URL, created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_Users(t *testing.T) {
	server := setupE2EServer(t)

	resp, err := http.Get(server.URL + "/users/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	resp.Body.Close()
	assert.Equal(t, "user1@example.com", user.Email)

	resp, err = http.Get(server.URL + "/users/99999")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/users?email=user2@example.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
