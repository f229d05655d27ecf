package engine

import (
	"time"

	"task-manager/internal/domain"
)

// Stats aggregates a task collection.
// Completed + InProgress + Todo always equals Total.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"inProgress"`
	Todo           int `json:"todo"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completionRate"`
}

// PriorityRate is the completion rate of the tasks at one priority.
type PriorityRate struct {
	Rate  int `json:"rate"`
	Total int `json:"total"`
}

// Distribution counts tasks by status and by priority.
// Both maps carry every enumerated key, zero counts included.
type Distribution struct {
	ByStatus   map[domain.Status]int   `json:"byStatus"`
	ByPriority map[domain.Priority]int `json:"byPriority"`
}

// CompletionRate returns 100*completed/total rounded half up, or 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	// Integer form of floor(100*c/t + 0.5).
	return (200*completed + total) / (2 * total)
}

// ComputeStats counts tasks per status and overdue tasks at now.
func ComputeStats(tasks []domain.Task, now time.Time) Stats {
	today := domain.DateOf(now)

	var s Stats
	for _, task := range tasks {
		s.Total++
		switch task.Status {
		case domain.StatusCompleted:
			s.Completed++
		case domain.StatusInProgress:
			s.InProgress++
		default:
			s.Todo++
		}
		if overdueOn(task, today) {
			s.Overdue++
		}
	}
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

// ComputeCompletionRateByPriority returns the completion rate for each of low,
// medium and high. Priorities without tasks report a zero rate and total.
func ComputeCompletionRateByPriority(tasks []domain.Task) map[domain.Priority]PriorityRate {
	totals := make(map[domain.Priority]int, len(domain.Priorities))
	completed := make(map[domain.Priority]int, len(domain.Priorities))
	for _, task := range tasks {
		totals[task.Priority]++
		if task.Status == domain.StatusCompleted {
			completed[task.Priority]++
		}
	}

	result := make(map[domain.Priority]PriorityRate, len(domain.Priorities))
	for _, p := range domain.Priorities {
		result[p] = PriorityRate{
			Rate:  CompletionRate(completed[p], totals[p]),
			Total: totals[p],
		}
	}
	return result
}

// ComputeDistribution counts tasks by status and by priority.
func ComputeDistribution(tasks []domain.Task) Distribution {
	d := Distribution{
		ByStatus:   make(map[domain.Status]int, len(domain.Statuses)),
		ByPriority: make(map[domain.Priority]int, len(domain.Priorities)),
	}
	for _, s := range domain.Statuses {
		d.ByStatus[s] = 0
	}
	for _, p := range domain.Priorities {
		d.ByPriority[p] = 0
	}
	for _, task := range tasks {
		d.ByStatus[task.Status]++
		d.ByPriority[task.Priority]++
	}
	return d
}
