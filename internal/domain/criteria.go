package domain

import (
	"fmt"
	"strings"
)

// FilterAll is the literal that disables a status or priority filter.
const FilterAll = "all"

// StatusFilter is either "all" or a Status.
type StatusFilter string

// PriorityFilter is either "all" or a Priority.
type PriorityFilter string

// FilterCriteria represents the list filters chosen by the user.
// An empty Status or Priority is treated the same as "all".
type FilterCriteria struct {
	SearchTerm string         `json:"searchTerm"`
	Status     StatusFilter   `json:"statusFilter"`
	Priority   PriorityFilter `json:"priorityFilter"`
}

// NoFilter returns criteria that keep every task.
func NoFilter() FilterCriteria {
	return FilterCriteria{Status: FilterAll, Priority: FilterAll}
}

// IsAll reports whether the filter is disabled.
func (f StatusFilter) IsAll() bool {
	return f == "" || f == FilterAll
}

// IsAll reports whether the filter is disabled.
func (f PriorityFilter) IsAll() bool {
	return f == "" || f == FilterAll
}

// IsEmpty reports whether no constraint is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.SearchTerm == "" && c.Status.IsAll() && c.Priority.IsAll()
}

// ParseStatusFilter accepts "all", the empty string, or a status name.
func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("invalid status filter %q: must be all, todo, in-progress or completed", s)
	}
	return StatusFilter(st), nil
}

// ParsePriorityFilter accepts "all", the empty string, or a priority name.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return FilterAll, nil
	}
	p, err := ParsePriority(s)
	if err != nil {
		return "", fmt.Errorf("invalid priority filter %q: must be all, low, medium or high", s)
	}
	return PriorityFilter(p), nil
}
