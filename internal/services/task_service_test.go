package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateTask(t *testing.T) {
	tests := []struct {
		name           string
		draft          domain.TaskDraft
		expected       domain.Task
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:     "should create task with defaults",
			draft:    domain.TaskDraft{Title: "Write report"},
			expected: domain.Task{Title: "Write report", Priority: domain.PriorityMedium, Status: domain.StatusTodo},
		},
		{
			name: "should keep every supplied field",
			draft: domain.TaskDraft{
				Title:       "  Ship release  ",
				Description: "tag and publish",
				DueDate:     &domain.Date{Year: 2024, Month: time.June, Day: 3},
				Priority:    domain.PriorityHigh,
				Status:      domain.StatusInProgress,
			},
			expected: domain.Task{
				Title:       "Ship release",
				Description: "tag and publish",
				DueDate:     &domain.Date{Year: 2024, Month: time.June, Day: 3},
				Priority:    domain.PriorityHigh,
				Status:      domain.StatusInProgress,
			},
		},
		{
			name:  "should return validation error for whitespace-only title",
			draft: domain.TaskDraft{Title: "   "},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
				assert.Contains(t, err.Error(), "title")
			},
		},
		{
			name:  "should return validation error for very long title",
			draft: domain.TaskDraft{Title: strings.Repeat("a", 300)},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
			},
		},
		{
			name:  "should return validation error for unknown priority",
			draft: domain.TaskDraft{Title: "A", Priority: "urgent"},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
				assert.Contains(t, err.Error(), "priority")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, clock := setupTaskService(t)
			owner := createOwner(t, repo, "owner")

			result, err := service.CreateTask(context.Background(), owner, tt.draft)

			if tt.errorAssertion != nil {
				require.Error(t, err)
				tt.errorAssertion(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, result.ID)
			assert.Equal(t, owner, result.UserID)
			assert.Equal(t, tt.expected.Title, result.Title)
			assert.Equal(t, tt.expected.Description, result.Description)
			assert.Equal(t, tt.expected.DueDate, result.DueDate)
			assert.Equal(t, tt.expected.Priority, result.Priority)
			assert.Equal(t, tt.expected.Status, result.Status)
			assert.Equal(t, clock.Now(), result.CreatedAt)
			assert.Equal(t, result.CreatedAt, result.UpdatedAt)

			stored, err := service.GetTask(context.Background(), owner, result.ID)
			require.NoError(t, err)
			assert.Equal(t, *result, *stored)
		})
	}
}

func TestTaskService_GetTask(t *testing.T) {
	service, repo, clock := setupTaskService(t)
	owner := createOwner(t, repo, "owner")
	other := createOwner(t, repo, "other")
	created := seedTasks(t, service, clock, owner, domain.NewTaskDraft("Mine"))

	tests := []struct {
		name    string
		ownerID string
		id      string
		errType *errors.ErrorType
	}{
		{name: "should return existing task", ownerID: owner, id: created[0].ID},
		{name: "should hide other owners' tasks", ownerID: other, id: created[0].ID, errType: ptrErrorType(errors.ErrorTypeNotFound)},
		{name: "should return not found for unknown id", ownerID: owner, id: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", errType: ptrErrorType(errors.ErrorTypeNotFound)},
		{name: "should return validation error for malformed id", ownerID: owner, id: "42", errType: ptrErrorType(errors.ErrorTypeValidation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.GetTask(context.Background(), tt.ownerID, tt.id)
			if tt.errType != nil {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, *tt.errType), "unexpected error %v", err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Mine", result.Title)
		})
	}
}

func TestTaskService_ListTasks(t *testing.T) {
	service, repo, clock := setupTaskService(t)
	owner := createOwner(t, repo, "owner")
	other := createOwner(t, repo, "other")

	seedTasks(t, service, clock, owner, domain.NewTaskDraft("first"), domain.NewTaskDraft("second"))
	seedTasks(t, service, clock, other, domain.NewTaskDraft("not mine"))

	tasks, err := service.ListTasks(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title, "newest first")
	assert.Equal(t, "first", tasks[1].Title)
}

func TestTaskService_UpdateTask(t *testing.T) {
	title := "  Renamed  "
	blank := ""
	high := domain.PriorityHigh

	tests := []struct {
		name           string
		patch          domain.TaskPatch
		verify         func(t *testing.T, before, after domain.Task)
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:  "should trim and apply title",
			patch: domain.TaskPatch{Title: &title},
			verify: func(t *testing.T, before, after domain.Task) {
				assert.Equal(t, "Renamed", after.Title)
				assert.Equal(t, before.Description, after.Description)
				assert.Equal(t, before.DueDate, after.DueDate)
			},
		},
		{
			name:  "should change only priority",
			patch: domain.TaskPatch{Priority: &high},
			verify: func(t *testing.T, before, after domain.Task) {
				assert.Equal(t, domain.PriorityHigh, after.Priority)
				assert.Equal(t, before.Title, after.Title)
			},
		},
		{
			name:  "should clear the due date",
			patch: domain.TaskPatch{ClearDueDate: true},
			verify: func(t *testing.T, _, after domain.Task) {
				assert.Nil(t, after.DueDate)
			},
		},
		{
			name:  "should reject an empty patch",
			patch: domain.TaskPatch{},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
			},
		},
		{
			name:  "should reject a blank title",
			patch: domain.TaskPatch{Title: &blank},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, clock := setupTaskService(t)
			owner := createOwner(t, repo, "owner")
			before := seedTasks(t, service, clock, owner, domain.TaskDraft{
				Title:       "Original",
				Description: "details",
				DueDate:     dueOn(t, "2024-06-10"),
			})[0]
			clock.Advance(time.Hour)

			after, err := service.UpdateTask(context.Background(), owner, before.ID, tt.patch)

			if tt.errorAssertion != nil {
				require.Error(t, err)
				tt.errorAssertion(t, err)
				return
			}
			require.NoError(t, err)
			tt.verify(t, before, *after)
			assert.Equal(t, before.CreatedAt, after.CreatedAt)
			assert.Equal(t, clock.Now(), after.UpdatedAt)

			stored, err := service.GetTask(context.Background(), owner, before.ID)
			require.NoError(t, err)
			assert.Equal(t, *after, *stored)
		})
	}
}

func TestTaskService_UpdateTask_OtherOwner(t *testing.T) {
	service, repo, clock := setupTaskService(t)
	owner := createOwner(t, repo, "owner")
	other := createOwner(t, repo, "other")
	task := seedTasks(t, service, clock, owner, domain.NewTaskDraft("Mine"))[0]

	title := "stolen"
	_, err := service.UpdateTask(context.Background(), other, task.ID, domain.TaskPatch{Title: &title})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestTaskService_DeleteTask(t *testing.T) {
	service, repo, clock := setupTaskService(t)
	owner := createOwner(t, repo, "owner")
	other := createOwner(t, repo, "other")
	task := seedTasks(t, service, clock, owner, domain.NewTaskDraft("Doomed"))[0]
	ctx := context.Background()

	err := service.DeleteTask(ctx, other, task.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "other owners cannot delete")

	require.NoError(t, service.DeleteTask(ctx, owner, task.ID))

	_, err = service.GetTask(ctx, owner, task.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	err = service.DeleteTask(ctx, owner, task.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "deletion is not repeatable")

	err = service.DeleteTask(ctx, owner, "nope")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

func TestTaskService_ToggleComplete(t *testing.T) {
	service, repo, clock := setupTaskService(t)
	owner := createOwner(t, repo, "owner")
	ctx := context.Background()

	tasks := seedTasks(t, service, clock, owner,
		domain.TaskDraft{Title: "todo"},
		domain.TaskDraft{Title: "started", Status: domain.StatusInProgress},
	)

	for _, task := range tasks {
		toggled, err := service.ToggleComplete(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, toggled.Status, task.Title)

		reopened, err := service.ToggleComplete(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTodo, reopened.Status, task.Title)
	}
}
