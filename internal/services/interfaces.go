package services

import (
	"context"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Dashboard is the landing view: counts over every task plus the newest ones.
type Dashboard struct {
	Stats        engine.Stats  `json:"stats"`
	RecentTasks  []domain.Task `json:"recentTasks"`
	OverdueTasks []domain.Task `json:"overdueTasks"`
}

// Analytics holds the completion and distribution breakdowns.
type Analytics struct {
	Stats        engine.Stats                            `json:"stats"`
	ByPriority   map[domain.Priority]engine.PriorityRate `json:"byPriority"`
	Distribution engine.Distribution                     `json:"distribution"`
}

// SortOrder defines how task results should be sorted
type SortOrder string

const (
	SortByCreated  SortOrder = "created"  // Newest first (default)
	SortByDue      SortOrder = "due"      // Earliest due date first, undated last
	SortByPriority SortOrder = "priority" // High before low
	SortByTitle    SortOrder = "title"    // Alphabetical, case-insensitive
)

// TimeService handles date arithmetic relative to the current day
type TimeService interface {
	Now() time.Time
	Today() domain.Date

	// ParseDueDate accepts YYYY-MM-DD, "today", "tomorrow" and shorthand such as "3d" or "2w".
	ParseDueDate(s string) (*domain.Date, error)
	// DescribeDue renders a due date relative to today, e.g. "due in 3d" or "overdue by 1d".
	DescribeDue(task domain.Task) string
}

// AuthService handles accounts and login sessions
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	// Authenticate returns the token's user and how long its session remains valid.
	Authenticate(ctx context.Context, token string) (*domain.User, time.Duration, error)
}

// TaskService handles task lifecycle operations
type TaskService interface {
	CreateTask(ctx context.Context, ownerID string, draft domain.TaskDraft) (*domain.Task, error)
	GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
	ToggleComplete(ctx context.Context, ownerID, id string) (*domain.Task, error)
}

// SearchService handles filtering and ordering of an owner's tasks
type SearchService interface {
	SearchTasks(ctx context.Context, ownerID string, criteria domain.FilterCriteria) ([]domain.Task, error)
	TaskView(ctx context.Context, ownerID string, criteria domain.FilterCriteria, order SortOrder) (*engine.View, error)
	OverdueTasks(ctx context.Context, ownerID string) ([]domain.Task, error)
	SortTasks(tasks []domain.Task, order SortOrder) []domain.Task
}

// ReportingService handles dashboard and analytics views
type ReportingService interface {
	GetDashboard(ctx context.Context, ownerID string) (*Dashboard, error)
	GetAnalytics(ctx context.Context, ownerID string) (*Analytics, error)
}

// AssistantService answers questions about the owner's tasks
type AssistantService interface {
	Ask(ctx context.Context, ownerID, message string) (*domain.Interaction, error)
}

// HistoryService gives access to past assistant interactions
type HistoryService interface {
	List(ctx context.Context, ownerID string) ([]domain.Interaction, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Interaction, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// SettingsService manages per-user preferences
type SettingsService interface {
	Get(ctx context.Context, ownerID string) (*domain.Settings, error)
	SetTheme(ctx context.Context, ownerID string, theme domain.Theme) (*domain.Settings, error)
	SetAIResponseStyle(ctx context.Context, ownerID string, style domain.AIResponseStyle) (*domain.Settings, error)
	SetLanguage(ctx context.Context, ownerID, language string) (*domain.Settings, error)

	// Current returns the preloaded settings of the signed-in user.
	Current() (domain.Settings, bool)
	Close()
}
