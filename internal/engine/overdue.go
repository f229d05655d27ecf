package engine

import (
	"time"

	"task-manager/internal/domain"
)

// IsOverdue reports whether task has a due date strictly before the calendar
// date of now (in now's location) and is not completed.
func IsOverdue(task domain.Task, now time.Time) bool {
	return overdueOn(task, domain.DateOf(now))
}

func overdueOn(task domain.Task, today domain.Date) bool {
	return task.DueDate != nil && task.Status != domain.StatusCompleted && task.DueDate.Before(today)
}

// Overdue returns the overdue tasks in input order.
func Overdue(tasks []domain.Task, now time.Time) []domain.Task {
	today := domain.DateOf(now)

	result := make([]domain.Task, 0)
	for _, task := range tasks {
		if overdueOn(task, today) {
			result = append(result, task)
		}
	}
	return result
}
