package engine

import (
	"time"

	"task-manager/internal/domain"
)

// View is what the presentation layer renders for a task list screen.
// Stats always describe the whole snapshot, not just the filtered tasks.
type View struct {
	Tasks    []domain.Task         `json:"tasks"`
	Stats    Stats                 `json:"stats"`
	Criteria domain.FilterCriteria `json:"criteria"`
}

// Derive filters tasks by criteria and computes stats over all of them.
func Derive(tasks []domain.Task, criteria domain.FilterCriteria, now time.Time) View {
	return View{
		Tasks:    Filter(tasks, criteria),
		Stats:    ComputeStats(tasks, now),
		Criteria: criteria,
	}
}
