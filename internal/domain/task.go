package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the enumerated priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for sorting, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q: must be one of low, medium, high", s)
	}
	return p, nil
}

// Status is the closed set of task states.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// IsValid reports whether s is one of the enumerated statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status %q: must be one of todo, in-progress, completed", s)
	}
	return st, nil
}

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *Date     `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"userId"`
}

// IsValid checks the task's structural invariants.
func (t Task) IsValid() bool {
	if strings.TrimSpace(t.Title) == "" || t.UserID == "" {
		return false
	}
	if !t.Priority.IsValid() || !t.Status.IsValid() {
		return false
	}
	return !t.UpdatedAt.Before(t.CreatedAt)
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// TaskDraft carries the caller-supplied fields of a new task.
// ID, owner and timestamps are assigned by the store.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *Date    `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// NewTaskDraft creates a draft with the given title and default priority and status.
func NewTaskDraft(title string) TaskDraft {
	return TaskDraft{Title: title}.WithDefaults()
}

// WithDefaults fills an unset priority with medium and an unset status with todo.
func (d TaskDraft) WithDefaults() TaskDraft {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Status == "" {
		d.Status = StatusTodo
	}
	return d
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	DueDate      *Date     `json:"dueDate,omitempty"`
	ClearDueDate bool      `json:"clearDueDate,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Status       *Status   `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.Priority == nil && p.Status == nil
}

// Apply returns a copy of t with the present fields of p applied.
// Timestamps are not touched.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// StatusPatch builds a patch that only changes status.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}
