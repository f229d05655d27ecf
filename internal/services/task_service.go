package services

import (
	"context"
	"log/slog"
	"strings"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/validation"

	"github.com/google/uuid"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo          sqlite.Repository
	clock         Clock
	logger        *slog.Logger
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo sqlite.Repository, cfg *config.Config, clock Clock, logger *slog.Logger) TaskService {
	return &taskServiceImpl{
		repo:          repo,
		clock:         clock,
		logger:        logger,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidatorWithConfig(cfg),
	}
}

// validateTaskID rejects identifiers that cannot belong to any task
func (t *taskServiceImpl) validateTaskID(id string) error {
	return asAppError(t.taskValidator.ValidateTaskID(id))
}

// CreateTask creates a new task for the owner. Unset priority and status
// default to medium and todo.
func (t *taskServiceImpl) CreateTask(ctx context.Context, ownerID string, draft domain.TaskDraft) (*domain.Task, error) {
	draft = draft.WithDefaults()
	if err := t.taskValidator.ValidateDraft(draft); err != nil {
		return nil, asAppError(err)
	}

	now := t.clock.now().UTC()
	task := domain.Task{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		Status:      draft.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	dbTask := t.mapper.Task.ToDatabase(task)
	if err := t.repo.CreateTask(ctx, &dbTask); err != nil {
		logIfSystemError(ctx, t.logger, "create task failed", err, "user_id", ownerID)
		return nil, err
	}

	t.logger.DebugContext(ctx, "task created", "task_id", task.ID, "user_id", ownerID)
	return &task, nil
}

// GetTask retrieves one of the owner's tasks by its ID
func (t *taskServiceImpl) GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if err := t.validateTaskID(id); err != nil {
		return nil, err
	}

	dbTask, err := t.repo.GetTask(ctx, id, ownerID)
	if err != nil {
		logIfSystemError(ctx, t.logger, "get task failed", err, "task_id", id)
		return nil, err
	}

	task := t.mapper.Task.FromDatabase(*dbTask)
	return &task, nil
}

// ListTasks returns all of the owner's tasks, newest first
func (t *taskServiceImpl) ListTasks(ctx context.Context, ownerID string) ([]domain.Task, error) {
	dbTasks, err := t.repo.ListTasks(ctx, ownerID)
	if err != nil {
		logIfSystemError(ctx, t.logger, "list tasks failed", err, "user_id", ownerID)
		return nil, err
	}
	return t.mapper.Task.FromDatabaseSlice(dbTasks), nil
}

// UpdateTask applies the present fields of patch and refreshes UpdatedAt
func (t *taskServiceImpl) UpdateTask(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := t.validateTaskID(id); err != nil {
		return nil, err
	}
	if err := t.taskValidator.ValidatePatch(patch); err != nil {
		return nil, asAppError(err)
	}

	current, err := t.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	return t.save(ctx, patch.Apply(*current))
}

// save persists an edited task, keeping UpdatedAt >= CreatedAt
func (t *taskServiceImpl) save(ctx context.Context, task domain.Task) (*domain.Task, error) {
	task.UpdatedAt = t.clock.now().UTC()
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	dbTask := t.mapper.Task.ToDatabase(task)
	if err := t.repo.UpdateTask(ctx, &dbTask); err != nil {
		logIfSystemError(ctx, t.logger, "update task failed", err, "task_id", task.ID)
		return nil, err
	}
	return &task, nil
}

// DeleteTask permanently removes one of the owner's tasks
func (t *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := t.validateTaskID(id); err != nil {
		return err
	}

	if err := t.repo.DeleteTask(ctx, id, ownerID); err != nil {
		logIfSystemError(ctx, t.logger, "delete task failed", err, "task_id", id)
		return err
	}

	t.logger.DebugContext(ctx, "task deleted", "task_id", id, "user_id", ownerID)
	return nil
}

// ToggleComplete marks an open task completed, and a completed task todo
func (t *taskServiceImpl) ToggleComplete(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	current, err := t.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	next := domain.StatusCompleted
	if current.IsCompleted() {
		next = domain.StatusTodo
	}
	return t.save(ctx, domain.StatusPatch(next).Apply(*current))
}
