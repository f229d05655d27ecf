package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/engine"
	"task-manager/internal/logging"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/services"
	"task-manager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// countingAPI counts token lookups that reach the API
type countingAPI struct {
	api.API
	authentications atomic.Int32
}

func (c *countingAPI) Authenticate(ctx context.Context, token string) (*domain.User, time.Duration, error) {
	c.authentications.Add(1)
	return c.API.Authenticate(ctx, token)
}

type testEnv struct {
	server   *Server
	api      *countingAPI
	provider *session.Provider
}

func setupServer(t *testing.T, configure ...func(*config.Config)) *testEnv {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	for _, fn := range configure {
		fn(cfg)
	}

	provider := session.NewProvider()
	container := services.NewServiceContainer(repo, provider, cfg, logging.Discard(), services.ContainerOptions{
		Clock:  func() time.Time { return testNow },
		Picker: func(int) int { return 0 },
	})
	counting := &countingAPI{API: api.New(container, provider)}

	server, err := NewServer(counting, cfg, logging.Discard())
	require.NoError(t, err)

	t.Cleanup(func() {
		server.Close()
		container.Close()
		provider.Close()
		repo.Close()
	})
	return &testEnv{server: server, api: counting, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signUp registers and logs in over HTTP, returning the bearer token
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", registerRequest{Email: email, Password: "correct horse"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: email, Password: "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginResponse](t, rec).Token
}

func TestServer_Health(t *testing.T) {
	env := setupServer(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Auth(t *testing.T) {
	env := setupServer(t)
	token := env.signUp(t, "ada@example.com")

	t.Run("login does not sign in the process", func(t *testing.T) {
		_, ok := env.provider.CurrentUser()
		assert.False(t, ok)
	})

	t.Run("me", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		user := decode[domain.User](t, rec)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate registration", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerRequest{Email: "ada@example.com", Password: "correct horse"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: "ada@example.com", Password: "wrong password"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", decode[errorResponse](t, rec).Error)
	})

	t.Run("invalid registration", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerRequest{Email: "not-an-email", Password: "correct horse"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_RejectsMissingOrBadTokens(t *testing.T) {
	env := setupServer(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "authorization required"},
		{"not bearer", "Basic abc", "invalid authorization header"},
		{"empty bearer", "Bearer ", "invalid authorization header"},
		{"unknown token", "Bearer deadbeef", "session is invalid or has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestServer_TokenCache(t *testing.T) {
	env := setupServer(t)
	token := env.signUp(t, "ada@example.com")

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodGet, "/api/v1/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int32(0), env.api.authentications.Load(), "login seeds the cache")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, int32(1), env.api.authentications.Load())
}

func TestServer_TaskLifecycle(t *testing.T) {
	env := setupServer(t)
	token := env.signUp(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", token, createTaskRequest{Title: "File taxes", Priority: "high", DueDate: "2024-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	taxes := decode[domain.Task](t, rec)
	assert.Equal(t, domain.PriorityHigh, taxes.Priority)
	assert.Equal(t, domain.StatusTodo, taxes.Status)
	assert.Contains(t, rec.Body.String(), `"dueDate":"2024-01-01"`)

	rec = env.do(t, http.MethodPost, "/api/v1/tasks", token, createTaskRequest{Title: "Call bank", Priority: "high", Status: "completed"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/tasks", token, createTaskRequest{Title: "Water plants", Priority: "low", DueDate: "tomorrow"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plants := decode[domain.Task](t, rec)
	assert.Contains(t, rec.Body.String(), `"dueDate":"2024-06-02"`)

	t.Run("list view", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks?priority=high&sort=title", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[engine.View](t, rec)

		require.Len(t, view.Tasks, 2)
		assert.Equal(t, "Call bank", view.Tasks[0].Title)
		assert.Equal(t, "File taxes", view.Tasks[1].Title)
		assert.Equal(t, engine.Stats{Total: 3, Completed: 1, Todo: 2, Overdue: 1, CompletionRate: 33}, view.Stats)
	})

	t.Run("search", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks?search=PLANT", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[engine.View](t, rec)
		require.Len(t, view.Tasks, 1)
		assert.Equal(t, plants.ID, view.Tasks[0].ID)
	})

	t.Run("invalid filters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/tasks?status=someday", token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/tasks?priority=urgent", token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/tasks?sort=size", token, nil).Code)
	})

	t.Run("overdue", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks/overdue", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tasks := decode[[]domain.Task](t, rec)
		require.Len(t, tasks, 1)
		assert.Equal(t, taxes.ID, tasks[0].ID)
	})

	t.Run("patch", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/tasks/"+plants.ID, token, `{"title":"Water the plants","clearDueDate":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[domain.Task](t, rec)
		assert.Equal(t, "Water the plants", updated.Title)
		assert.Nil(t, updated.DueDate)
		assert.Equal(t, domain.PriorityLow, updated.Priority)

		rec = env.do(t, http.MethodPatch, "/api/v1/tasks/"+plants.ID, token, `{"priority":"urgent"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("toggle", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks/"+taxes.ID+"/toggle", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.StatusCompleted, decode[domain.Task](t, rec).Status)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/tasks/"+taxes.ID, token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/tasks/"+taxes.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_TasksAreScopedToTheirOwner(t *testing.T) {
	env := setupServer(t)
	ada := env.signUp(t, "ada@example.com")
	grace := env.signUp(t, "grace@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", ada, createTaskRequest{Title: "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID, grace, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, grace, nil).Code)

	rec = env.do(t, http.MethodGet, "/api/v1/tasks", grace, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[engine.View](t, rec).Tasks)
}

func TestServer_RequestBodies(t *testing.T) {
	env := setupServer(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 128 })
	token := env.signUp(t, "ada@example.com")

	t.Run("too large", func(t *testing.T) {
		body := createTaskRequest{Title: strings.Repeat("x", 300)}
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", token, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", token, `{"name":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not json", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", token, `title=x`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", token, `{"title":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ReportsAssistantAndSettings(t *testing.T) {
	env := setupServer(t)
	token := env.signUp(t, "ada@example.com")

	for _, req := range []createTaskRequest{
		{Title: "File taxes", Priority: "high", DueDate: "2024-01-01"},
		{Title: "Call bank", Priority: "high", Status: "completed"},
		{Title: "Water plants", Priority: "low"},
	} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/tasks", token, req).Code)
	}

	t.Run("dashboard", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		dashboard := decode[services.Dashboard](t, rec)
		assert.Equal(t, 3, dashboard.Stats.Total)
		assert.Len(t, dashboard.RecentTasks, 3)
		assert.Len(t, dashboard.OverdueTasks, 1)
	})

	t.Run("analytics", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/analytics", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		analytics := decode[services.Analytics](t, rec)
		assert.Equal(t, engine.PriorityRate{Rate: 50, Total: 2}, analytics.ByPriority[domain.PriorityHigh])
		assert.Equal(t, engine.PriorityRate{Rate: 0, Total: 0}, analytics.ByPriority[domain.PriorityMedium])
		assert.Equal(t, engine.PriorityRate{Rate: 0, Total: 1}, analytics.ByPriority[domain.PriorityLow])
		assert.Equal(t, 2, analytics.Distribution.ByStatus[domain.StatusTodo])
	})

	t.Run("assistant and history", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/assistant", token, askRequest{Message: "anything overdue?"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		interaction := decode[domain.Interaction](t, rec)
		assert.Contains(t, interaction.Response, "File taxes")

		rec = env.do(t, http.MethodGet, "/api/v1/history", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]domain.Interaction](t, rec), 1)

		rec = env.do(t, http.MethodGet, "/api/v1/history/"+interaction.ID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anything overdue?", decode[domain.Interaction](t, rec).Query)

		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/history/"+interaction.ID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/history/"+interaction.ID, token, nil).Code)

		rec = env.do(t, http.MethodPost, "/api/v1/assistant", token, askRequest{Message: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("settings", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/settings", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ThemeLight, decode[domain.Settings](t, rec).Theme)

		rec = env.do(t, http.MethodPatch, "/api/v1/settings", token, `{"theme":"dark","language":"fr"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		settings := decode[domain.Settings](t, rec)
		assert.Equal(t, domain.ThemeDark, settings.Theme)
		assert.Equal(t, "fr", settings.Language)

		rec = env.do(t, http.MethodPatch, "/api/v1/settings", token, `{"theme":"sepia"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, http.MethodPatch, "/api/v1/settings", token, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ServeStopsWithContext(t *testing.T) {
	env := setupServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
