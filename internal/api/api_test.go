package api

import (
	"context"
	"testing"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/services"
	"task-manager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func setupTestAPI(t *testing.T) (API, *session.Provider) {
	t.Helper()
	repo, err := config.CreateTestRepository()
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost

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
	return New(container, provider), provider
}

// signUp registers and logs in a user, returning the session token
func signUp(t *testing.T, a API, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := a.Register(ctx, email, "correct horse", "")
	require.NoError(t, err)
	_, token, err := a.Login(ctx, email, "correct horse")
	require.NoError(t, err)
	return token
}

func TestAPI_RequiresSignedInUser(t *testing.T) {
	a, _ := setupTestAPI(t)
	ctx := context.Background()

	_, err := a.CurrentUser(ctx)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = a.CreateTask(ctx, domain.NewTaskDraft("x"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = a.ListTasks(ctx, domain.NoFilter(), services.SortByCreated)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = a.Dashboard(ctx)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = a.Ask(ctx, "hello")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = a.GetSettings(ctx)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))
}

func TestAPI_LoginSignsInAndLogoutSignsOut(t *testing.T) {
	a, provider := setupTestAPI(t)
	ctx := context.Background()

	token := signUp(t, a, "ada@example.com")

	user, ok := provider.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user.Email)

	me, err := a.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, a.Logout(ctx, token))
	_, ok = provider.CurrentUser()
	assert.False(t, ok)

	_, _, err = a.Authenticate(ctx, token)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))
}

func TestAPI_RestoreSession(t *testing.T) {
	a, provider := setupTestAPI(t)
	ctx := context.Background()

	token := signUp(t, a, "ada@example.com")
	provider.SignOut()

	user, _, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	_, ok := provider.CurrentUser()
	assert.False(t, ok, "Authenticate must not sign in")

	restored, err := a.RestoreSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, restored.ID)
	current, ok := provider.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.ID, current.ID)
}

func TestAPI_TaskLifecycle(t *testing.T) {
	a, _ := setupTestAPI(t)
	ctx := context.Background()
	signUp(t, a, "ada@example.com")

	due, err := a.ParseDueDate("2024-05-01")
	require.NoError(t, err)

	overdue, err := a.CreateTask(ctx, domain.TaskDraft{Title: "File taxes", Priority: domain.PriorityHigh, DueDate: due})
	require.NoError(t, err)
	_, err = a.CreateTask(ctx, domain.TaskDraft{Title: "Water plants", Priority: domain.PriorityLow})
	require.NoError(t, err)

	t.Run("list filters and sorts", func(t *testing.T) {
		tasks, err := a.ListTasks(ctx, domain.FilterCriteria{Priority: "high"}, services.SortByTitle)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "File taxes", tasks[0].Title)

		all, err := a.ListTasks(ctx, domain.FilterCriteria{}, services.SortByTitle)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "File taxes", all[0].Title)
		assert.Equal(t, "Water plants", all[1].Title)
	})

	t.Run("view", func(t *testing.T) {
		view, err := a.TaskView(ctx, domain.FilterCriteria{SearchTerm: "plants"}, services.SortByCreated)
		require.NoError(t, err)
		require.Len(t, view.Tasks, 1)
		assert.Equal(t, 2, view.Stats.Total)
		assert.Equal(t, 1, view.Stats.Overdue)
	})

	t.Run("overdue", func(t *testing.T) {
		tasks, err := a.OverdueTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, overdue.ID, tasks[0].ID)
		assert.Equal(t, "overdue by 31d", a.DescribeDue(tasks[0]))
	})

	t.Run("update and toggle", func(t *testing.T) {
		title := "File 2023 taxes"
		updated, err := a.UpdateTask(ctx, overdue.ID, domain.TaskPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)

		toggled, err := a.ToggleComplete(ctx, overdue.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, toggled.Status)

		dash, err := a.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, dash.Stats.Total)
		assert.Equal(t, 1, dash.Stats.Completed)
		assert.Equal(t, 0, dash.Stats.Overdue)
		assert.Equal(t, 50, dash.Stats.CompletionRate)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, a.DeleteTask(ctx, overdue.ID))
		_, err := a.GetTask(ctx, overdue.ID)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})
}

func TestAPI_BoundUserOverridesProvider(t *testing.T) {
	a, provider := setupTestAPI(t)
	ctx := context.Background()

	signUp(t, a, "ada@example.com")
	ada, _ := provider.CurrentUser()
	_, err := a.CreateTask(ctx, domain.NewTaskDraft("Ada's task"))
	require.NoError(t, err)

	grace, err := a.Register(ctx, "grace@example.com", "correct horse", "Grace")
	require.NoError(t, err)

	graceCtx := WithUser(ctx, *grace)
	tasks, err := a.ListTasks(graceCtx, domain.NoFilter(), services.SortByCreated)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Login on a bound context leaves the provider alone
	_, _, err = a.Login(graceCtx, "grace@example.com", "correct horse")
	require.NoError(t, err)
	current, ok := provider.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, ada.ID, current.ID)
}

func TestAPI_WithoutSession(t *testing.T) {
	a, provider := setupTestAPI(t)
	ctx := WithoutSession(context.Background())

	_, err := a.Register(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)
	_, token, err := a.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, ok := provider.CurrentUser()
	assert.False(t, ok)

	_, err = a.RestoreSession(ctx, token)
	require.NoError(t, err)
	_, ok = provider.CurrentUser()
	assert.False(t, ok)
}

func TestAPI_AskAndHistory(t *testing.T) {
	a, _ := setupTestAPI(t)
	ctx := context.Background()
	signUp(t, a, "ada@example.com")

	interaction, err := a.Ask(ctx, "How is my progress?")
	require.NoError(t, err)
	assert.NotEmpty(t, interaction.Response)

	history, err := a.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	got, err := a.GetHistory(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "How is my progress?", got.Query)

	require.NoError(t, a.DeleteHistory(ctx, interaction.ID))
	history, err = a.ListHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAPI_UpdateSettings(t *testing.T) {
	a, _ := setupTestAPI(t)
	ctx := context.Background()
	signUp(t, a, "ada@example.com")

	settings, err := a.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, settings.Theme)

	dark, detailed, lang := "dark", "detailed", "pt-BR"
	settings, err = a.UpdateSettings(ctx, SettingsUpdate{Theme: &dark, AIResponseStyle: &detailed, Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, settings.Theme)
	assert.Equal(t, domain.AIStyleDetailed, settings.AIResponseStyle)
	assert.Equal(t, "pt-BR", settings.Language)

	_, err = a.UpdateSettings(ctx, SettingsUpdate{})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	bogus := "sepia"
	_, err = a.UpdateSettings(ctx, SettingsUpdate{Theme: &bogus})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestAPI_DetachedContextIgnoresProvider(t *testing.T) {
	a, _ := setupTestAPI(t)
	signUp(t, a, "ada@example.com")

	_, err := a.CurrentUser(WithoutSession(context.Background()))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))
}
