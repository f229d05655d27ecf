package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite"

	"github.com/google/uuid"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

var assistantTips = []string{
	"Based on your current tasks, I suggest tackling the high-priority items first. They'll give you the biggest impact!",
	"Consider breaking down larger tasks into smaller, manageable chunks. It makes progress feel more achievable.",
	"Don't forget to take breaks between tasks. Productivity isn't just about doing more, it's about sustainable focus.",
	"Try time-blocking your tasks. Assign specific time slots to each task to maintain focus and momentum.",
	"Review your completed tasks regularly. It's a great way to see your progress and stay motivated!",
}

var (
	priorityKeywords = []string{"priority", "first", "important"}
	overdueKeywords  = []string{"overdue", "late"}
	progressKeywords = []string{"progress", "status"}
)

// assistantServiceImpl implements the AssistantService interface
type assistantServiceImpl struct {
	repo        sqlite.Repository
	taskService TaskService
	settings    SettingsService
	clock       Clock
	pick        Picker
	logger      *slog.Logger
	mapper      *domain.Mapper
}

// NewAssistantService creates a new AssistantService instance. A nil pick
// chooses tips with math/rand.
func NewAssistantService(repo sqlite.Repository, taskService TaskService, settings SettingsService, clock Clock, pick Picker, logger *slog.Logger) AssistantService {
	if pick == nil {
		pick = rand.IntN
	}
	return &assistantServiceImpl{
		repo:        repo,
		taskService: taskService,
		settings:    settings,
		clock:       clock,
		pick:        pick,
		logger:      logger,
		mapper:      domain.NewMapper(),
	}
}

// settingsFor uses the preloaded settings when ownerID is the signed-in user
func (a *assistantServiceImpl) settingsFor(ctx context.Context, ownerID string) (*domain.Settings, error) {
	if current, ok := a.settings.Current(); ok && current.UserID == ownerID {
		return &current, nil
	}
	return a.settings.Get(ctx, ownerID)
}

// Ask answers message from the owner's tasks and records the exchange in history
func (a *assistantServiceImpl) Ask(ctx context.Context, ownerID, message string) (*domain.Interaction, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.NewValidationError("message is required", nil)
	}

	tasks, err := a.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	settings, err := a.settingsFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := a.clock.now()
	reply := ComposeReply(tasks, message, now, a.pick)
	if settings.AIResponseStyle == domain.AIStyleDetailed {
		reply += "\n\n" + summaryLine(engine.ComputeStats(tasks, now))
	}

	interaction := domain.Interaction{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Title:     domain.InteractionTitle(message),
		Query:     message,
		Response:  reply,
		CreatedAt: now.UTC(),
	}

	dbInteraction := a.mapper.Interaction.ToDatabase(interaction)
	if err := a.repo.CreateInteraction(ctx, &dbInteraction); err != nil {
		logIfSystemError(ctx, a.logger, "save interaction failed", err, "user_id", ownerID)
		return nil, err
	}

	return &interaction, nil
}

// ComposeReply picks the first matching rule for message. Keywords are
// matched case-insensitively; with no match a tip is chosen by pick.
func ComposeReply(tasks []domain.Task, message string, now time.Time, pick Picker) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, priorityKeywords):
		var urgent []domain.Task
		for _, t := range tasks {
			if t.Priority == domain.PriorityHigh && !t.IsCompleted() {
				urgent = append(urgent, t)
			}
		}
		if len(urgent) > 0 {
			return fmt.Sprintf("I recommend focusing on these high-priority tasks: %s. Start with the ones due soonest!", quoteTitles(urgent))
		}
		return "You're doing great! Focus on your medium-priority tasks or take a well-deserved break."

	case containsAny(lower, overdueKeywords):
		overdue := engine.Overdue(tasks, now)
		if len(overdue) > 0 {
			return fmt.Sprintf("You have %d overdue task(s): %s. Consider prioritizing these!", len(overdue), quoteTitles(overdue))
		}
		return "Great news! You don't have any overdue tasks. Keep up the excellent work!"

	case containsAny(lower, progressKeywords):
		stats := engine.ComputeStats(tasks, now)
		return fmt.Sprintf("You've completed %d out of %d tasks (%d%%). %s",
			stats.Completed, stats.Total, stats.CompletionRate, encouragement(stats.CompletionRate))
	}

	return assistantTips[pick(len(assistantTips))]
}

func encouragement(rate int) string {
	switch {
	case rate >= 75:
		return "Excellent progress!"
	case rate >= 50:
		return "Good momentum!"
	default:
		return "Keep going!"
	}
}

func summaryLine(stats engine.Stats) string {
	return fmt.Sprintf("Summary: %d tasks, %d open, %d overdue.", stats.Total, stats.Total-stats.Completed, stats.Overdue)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func quoteTitles(tasks []domain.Task) string {
	quoted := make([]string, len(tasks))
	for i, t := range tasks {
		quoted[i] = `"` + t.Title + `"`
	}
	return strings.Join(quoted, ", ")
}
