package api

import (
	"context"
	"strings"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
	"task-manager/internal/errors"
	"task-manager/internal/services"
	"task-manager/internal/session"
)

// SettingsUpdate carries the preferences to change. Nil fields are left as they are.
type SettingsUpdate struct {
	Theme           *string `json:"theme,omitempty"`
	AIResponseStyle *string `json:"aiResponseStyle,omitempty"`
	Language        *string `json:"language,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u SettingsUpdate) IsEmpty() bool {
	return u.Theme == nil && u.AIResponseStyle == nil && u.Language == nil
}

// API is the single entry point used by the CLI and the HTTP server.
// Apart from the account operations, every method acts on behalf of the
// caller: the user bound to ctx with WithUser, or else the user signed in
// on the session provider.
type API interface {
	// ========== Accounts ==========

	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	// Login verifies credentials, signs the user in and returns a session token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Logout revokes token and signs the current user out.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a token to its user and the session's remaining
	// lifetime without signing anybody in.
	Authenticate(ctx context.Context, token string) (*domain.User, time.Duration, error)
	// RestoreSession authenticates token and signs its user in.
	RestoreSession(ctx context.Context, token string) (*domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)

	// ========== Tasks ==========

	CreateTask(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	// ListTasks returns the tasks matching criteria in the requested order.
	ListTasks(ctx context.Context, criteria domain.FilterCriteria, order services.SortOrder) ([]domain.Task, error)
	// TaskView is ListTasks plus stats over all of the caller's tasks.
	TaskView(ctx context.Context, criteria domain.FilterCriteria, order services.SortOrder) (*engine.View, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ToggleComplete(ctx context.Context, id string) (*domain.Task, error)
	OverdueTasks(ctx context.Context) ([]domain.Task, error)

	// ========== Reporting ==========

	Dashboard(ctx context.Context) (*services.Dashboard, error)
	Analytics(ctx context.Context) (*services.Analytics, error)

	// ========== Assistant ==========

	Ask(ctx context.Context, message string) (*domain.Interaction, error)
	ListHistory(ctx context.Context) ([]domain.Interaction, error)
	GetHistory(ctx context.Context, id string) (*domain.Interaction, error)
	DeleteHistory(ctx context.Context, id string) error

	// ========== Settings ==========

	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, update SettingsUpdate) (*domain.Settings, error)

	// ========== Dates ==========

	ParseDueDate(s string) (*domain.Date, error)
	DescribeDue(task domain.Task) string
}

type apiImpl struct {
	services *services.ServiceContainer
	provider *session.Provider
}

// New creates an API over the given services. provider tracks the signed-in user.
func New(container *services.ServiceContainer, provider *session.Provider) API {
	return &apiImpl{
		services: container,
		provider: provider,
	}
}

type userKey struct{}

// WithUser binds user to ctx. Calls made with the returned context act as user
// regardless of who is signed in on the provider.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user bound with WithUser.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(domain.User)
	return user, ok
}

type detachedKey struct{}

// WithoutSession marks ctx so that Login, RestoreSession and Logout leave the
// session provider alone. Servers handling many users use it.
func WithoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, detachedKey{}, true)
}

func isDetached(ctx context.Context) bool {
	detached, _ := ctx.Value(detachedKey{}).(bool)
	return detached
}

// sessionless reports whether calls on ctx must not touch the provider
func (a *apiImpl) sessionless(ctx context.Context) bool {
	if a.provider == nil || isDetached(ctx) {
		return true
	}
	_, bound := UserFromContext(ctx)
	return bound
}

// owner resolves the acting user's ID
func (a *apiImpl) owner(ctx context.Context) (string, error) {
	user, err := a.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (a *apiImpl) CurrentUser(ctx context.Context) (*domain.User, error) {
	if user, ok := UserFromContext(ctx); ok {
		return &user, nil
	}
	if a.provider != nil && !isDetached(ctx) {
		if user, ok := a.provider.CurrentUser(); ok {
			return user, nil
		}
	}
	return nil, errors.NewUnauthenticatedError("not signed in, run 'tm login' first")
}

// ========== Accounts ==========

func (a *apiImpl) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return a.services.AuthService.Register(ctx, email, password, name)
}

func (a *apiImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, token, err := a.services.AuthService.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	a.signIn(ctx, *user)
	return user, token, nil
}

func (a *apiImpl) Logout(ctx context.Context, token string) error {
	if err := a.services.AuthService.Logout(ctx, token); err != nil {
		return err
	}
	if !a.sessionless(ctx) {
		a.provider.SignOut()
	}
	return nil
}

func (a *apiImpl) Authenticate(ctx context.Context, token string) (*domain.User, time.Duration, error) {
	return a.services.AuthService.Authenticate(ctx, token)
}

func (a *apiImpl) RestoreSession(ctx context.Context, token string) (*domain.User, error) {
	user, _, err := a.services.AuthService.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	a.signIn(ctx, *user)
	return user, nil
}

// signIn publishes user on the provider unless ctx is sessionless
func (a *apiImpl) signIn(ctx context.Context, user domain.User) {
	if a.sessionless(ctx) {
		return
	}
	a.provider.SignIn(user)
}

// ========== Tasks ==========

func (a *apiImpl) CreateTask(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.TaskService.CreateTask(ctx, ownerID, draft)
}

func (a *apiImpl) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.TaskService.GetTask(ctx, ownerID, id)
}

func (a *apiImpl) ListTasks(ctx context.Context, criteria domain.FilterCriteria, order services.SortOrder) ([]domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := a.services.SearchService.SearchTasks(ctx, ownerID, criteria)
	if err != nil {
		return nil, err
	}
	return a.services.SearchService.SortTasks(tasks, order), nil
}

func (a *apiImpl) TaskView(ctx context.Context, criteria domain.FilterCriteria, order services.SortOrder) (*engine.View, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.SearchService.TaskView(ctx, ownerID, criteria, order)
}

func (a *apiImpl) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.TaskService.UpdateTask(ctx, ownerID, id, patch)
}

func (a *apiImpl) DeleteTask(ctx context.Context, id string) error {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return err
	}
	return a.services.TaskService.DeleteTask(ctx, ownerID, id)
}

func (a *apiImpl) ToggleComplete(ctx context.Context, id string) (*domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.TaskService.ToggleComplete(ctx, ownerID, id)
}

func (a *apiImpl) OverdueTasks(ctx context.Context) ([]domain.Task, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := a.services.SearchService.OverdueTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return a.services.SearchService.SortTasks(tasks, services.SortByDue), nil
}

// ========== Reporting ==========

func (a *apiImpl) Dashboard(ctx context.Context) (*services.Dashboard, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.ReportingService.GetDashboard(ctx, ownerID)
}

func (a *apiImpl) Analytics(ctx context.Context) (*services.Analytics, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.ReportingService.GetAnalytics(ctx, ownerID)
}

// ========== Assistant ==========

func (a *apiImpl) Ask(ctx context.Context, message string) (*domain.Interaction, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.AssistantService.Ask(ctx, ownerID, message)
}

func (a *apiImpl) ListHistory(ctx context.Context) ([]domain.Interaction, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.HistoryService.List(ctx, ownerID)
}

func (a *apiImpl) GetHistory(ctx context.Context, id string) (*domain.Interaction, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	return a.services.HistoryService.Get(ctx, ownerID, id)
}

func (a *apiImpl) DeleteHistory(ctx context.Context, id string) error {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return err
	}
	return a.services.HistoryService.Delete(ctx, ownerID, id)
}

// ========== Settings ==========

func (a *apiImpl) GetSettings(ctx context.Context) (*domain.Settings, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	if current, ok := a.services.SettingsService.Current(); ok && current.UserID == ownerID {
		return &current, nil
	}
	return a.services.SettingsService.Get(ctx, ownerID)
}

// UpdateSettings applies each present field in turn and returns the final settings.
func (a *apiImpl) UpdateSettings(ctx context.Context, update SettingsUpdate) (*domain.Settings, error) {
	ownerID, err := a.owner(ctx)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, errors.NewValidationError("no settings to update", nil)
	}

	settingsService := a.services.SettingsService
	var settings *domain.Settings
	if update.Theme != nil {
		if settings, err = settingsService.SetTheme(ctx, ownerID, domain.Theme(strings.TrimSpace(*update.Theme))); err != nil {
			return nil, err
		}
	}
	if update.AIResponseStyle != nil {
		style := domain.AIResponseStyle(strings.TrimSpace(*update.AIResponseStyle))
		if settings, err = settingsService.SetAIResponseStyle(ctx, ownerID, style); err != nil {
			return nil, err
		}
	}
	if update.Language != nil {
		if settings, err = settingsService.SetLanguage(ctx, ownerID, *update.Language); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// ========== Dates ==========

func (a *apiImpl) ParseDueDate(s string) (*domain.Date, error) {
	return a.services.TimeService.ParseDueDate(s)
}

func (a *apiImpl) DescribeDue(task domain.Task) string {
	return a.services.TimeService.DescribeDue(task)
}
