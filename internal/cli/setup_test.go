package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/logging"
	"task-manager/internal/services"
	"task-manager/internal/session"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

const testPassword = "correct horse"

// testEnv is an in-memory task manager shared by the apps of one test
type testEnv struct {
	api      api.API
	config   *config.Config
	provider *session.Provider
	tokens   *session.TokenFile
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := config.CreateTestRepository()
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Database.Dir = t.TempDir()

	provider := session.NewProvider()
	container := services.NewServiceContainer(repo, provider, cfg, logging.Discard(), services.ContainerOptions{
		Clock:  func() time.Time { return testNow },
		Picker: func(int) int { return 0 },
	})
	t.Cleanup(func() {
		container.Close()
		provider.Close()
		repo.Close()
	})

	original := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = original })

	return &testEnv{
		api:      api.New(container, provider),
		config:   cfg,
		provider: provider,
		tokens:   session.NewTokenFile(filepath.Join(cfg.Database.Dir, "session")),
	}
}

// newApp returns an app reading input and writing to the returned buffer
func (e *testEnv) newApp(input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := NewApp(e.api, e.config, WithIO(strings.NewReader(input), out), WithTokenFile(e.tokens))
	return app, out
}

// signIn registers email and leaves it signed in on the provider
func (e *testEnv) signIn(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.api.Register(ctx, email, testPassword, "")
	require.NoError(t, err)
	_, token, err := e.api.Login(ctx, email, testPassword)
	require.NoError(t, err)
	require.NoError(t, e.tokens.Save(token))
}

// addTask creates a task for the signed-in user
func (e *testEnv) addTask(t *testing.T, draft domain.TaskDraft) domain.Task {
	t.Helper()
	task, err := e.api.CreateTask(context.Background(), draft)
	require.NoError(t, err)
	return *task
}

func datePtr(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}
