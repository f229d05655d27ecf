package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
	"task-manager/internal/errors"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	taskService TaskService
	clock       Clock
}

// NewSearchService creates a new SearchService instance
func NewSearchService(taskService TaskService, clock Clock) SearchService {
	return &searchServiceImpl{
		taskService: taskService,
		clock:       clock,
	}
}

// ParseSortOrder accepts created, due, priority or title. Empty means created.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "":
		return SortByCreated, nil
	case SortByCreated, SortByDue, SortByPriority, SortByTitle:
		return order, nil
	}
	return "", errors.NewInvalidInputError("sort", s, fmt.Sprintf("must be one of %s, %s, %s, %s",
		SortByCreated, SortByDue, SortByPriority, SortByTitle))
}

// SearchTasks returns the owner's tasks matching criteria, newest first
func (s *searchServiceImpl) SearchTasks(ctx context.Context, ownerID string, criteria domain.FilterCriteria) ([]domain.Task, error) {
	tasks, err := s.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return engine.Filter(tasks, criteria), nil
}

// TaskView returns the owner's tasks matching criteria in the given order,
// together with stats over every task the owner has
func (s *searchServiceImpl) TaskView(ctx context.Context, ownerID string, criteria domain.FilterCriteria, order SortOrder) (*engine.View, error) {
	tasks, err := s.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := engine.Derive(tasks, criteria, s.clock.now())
	view.Tasks = s.SortTasks(view.Tasks, order)
	return &view, nil
}

// OverdueTasks returns the owner's open tasks whose due date has passed
func (s *searchServiceImpl) OverdueTasks(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks, err := s.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return engine.Overdue(tasks, s.clock.now()), nil
}

// SortTasks returns a sorted copy of tasks. Ties keep their input order.
func (s *searchServiceImpl) SortTasks(tasks []domain.Task, order SortOrder) []domain.Task {
	sorted := slices.Clone(tasks)

	switch order {
	case SortByDue:
		slices.SortStableFunc(sorted, compareDue)
	case SortByPriority:
		slices.SortStableFunc(sorted, func(a, b domain.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		})
	case SortByTitle:
		slices.SortStableFunc(sorted, func(a, b domain.Task) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	default:
		slices.SortStableFunc(sorted, func(a, b domain.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	return sorted
}

// compareDue orders by due date ascending with undated tasks last
func compareDue(a, b domain.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	case a.DueDate.Before(*b.DueDate):
		return -1
	case b.DueDate.Before(*a.DueDate):
		return 1
	}
	return 0
}
