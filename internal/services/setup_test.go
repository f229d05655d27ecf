package services

import (
	"context"
	"testing"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/logging"
	"task-manager/internal/repository/sqlite"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func setupRepo(t *testing.T) sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// createOwner inserts a user row that tasks and history can reference
func createOwner(t *testing.T, repo sqlite.Repository, id string) string {
	t.Helper()
	err := repo.CreateUser(context.Background(), &sqlite.User{
		ID:           id,
		Email:        id + "@example.com",
		Name:         id,
		PasswordHash: "x",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return id
}

func setupTaskService(t *testing.T) (TaskService, sqlite.Repository, *testClock) {
	t.Helper()
	repo := setupRepo(t)
	clock := newTestClock()
	return NewTaskService(repo, testConfig(), clock.Now, logging.Discard()), repo, clock
}

// seedTasks creates drafts in order, one minute apart, so the newest is last
func seedTasks(t *testing.T, service TaskService, clock *testClock, ownerID string, drafts ...domain.TaskDraft) []domain.Task {
	t.Helper()
	created := make([]domain.Task, 0, len(drafts))
	for _, d := range drafts {
		task, err := service.CreateTask(context.Background(), ownerID, d)
		require.NoError(t, err)
		created = append(created, *task)
		clock.Advance(time.Minute)
	}
	return created
}

func dueOn(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}
