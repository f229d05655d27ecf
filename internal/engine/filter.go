package engine

import (
	"strings"

	"task-manager/internal/domain"
)

// Filter returns the tasks that satisfy every predicate of criteria, in input order.
//
// A non-empty search term matches case-insensitively against title or description.
// Status and priority filters match exactly unless they are "all" or empty.
func Filter(tasks []domain.Task, criteria domain.FilterCriteria) []domain.Task {
	term := strings.ToLower(criteria.SearchTerm)

	result := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if term != "" && !matchesSearch(task, term) {
			continue
		}
		if !criteria.Status.IsAll() && task.Status != domain.Status(criteria.Status) {
			continue
		}
		if !criteria.Priority.IsAll() && task.Priority != domain.Priority(criteria.Priority) {
			continue
		}
		result = append(result, task)
	}
	return result
}

// matchesSearch expects term to be lower-cased already.
func matchesSearch(task domain.Task, term string) bool {
	return strings.Contains(strings.ToLower(task.Title), term) ||
		strings.Contains(strings.ToLower(task.Description), term)
}
