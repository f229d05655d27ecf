package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
)

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	clock Clock
}

// NewTimeService creates a new TimeService instance. A nil clock uses time.Now.
func NewTimeService(clock Clock) TimeService {
	return &timeServiceImpl{clock: clock}
}

// Now returns the current time
func (t *timeServiceImpl) Now() time.Time {
	return t.clock.now()
}

// Today returns the current calendar date in local time
func (t *timeServiceImpl) Today() domain.Date {
	return domain.DateOf(t.Now())
}

// ParseDueDate converts a date or shorthand into a calendar date
func (t *timeServiceImpl) ParseDueDate(s string) (*domain.Date, error) {
	input := strings.ToLower(strings.TrimSpace(s))
	if input == "" {
		return nil, errors.NewValidationError("due date cannot be empty", nil)
	}

	today := t.Today()
	switch input {
	case "today":
		return &today, nil
	case "tomorrow":
		d := today.AddDays(1)
		return &d, nil
	}

	if d, ok := t.parseShorthand(input, today); ok {
		return &d, nil
	}

	d, err := domain.ParseDate(input)
	if err != nil {
		return nil, errors.NewInvalidInputError("due date", s, "expected YYYY-MM-DD, today, tomorrow, Nd, Nw or Nmo")
	}
	return &d, nil
}

// parseShorthand handles offsets such as "3d", "2w" and "1mo"
func (t *timeServiceImpl) parseShorthand(input string, today domain.Date) (domain.Date, bool) {
	units := []struct {
		suffix string
		apply  func(n int) domain.Date
	}{
		{"mo", func(n int) domain.Date { return domain.DateOf(today.In(time.UTC).AddDate(0, n, 0)) }},
		{"w", func(n int) domain.Date { return today.AddDays(7 * n) }},
		{"d", func(n int) domain.Date { return today.AddDays(n) }},
	}

	for _, unit := range units {
		digits, found := strings.CutSuffix(input, unit.suffix)
		if !found {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return domain.Date{}, false
		}
		return unit.apply(n), true
	}
	return domain.Date{}, false
}

// DescribeDue renders the task's due date relative to today
func (t *timeServiceImpl) DescribeDue(task domain.Task) string {
	if task.DueDate == nil {
		return "no due date"
	}

	days := daysBetween(t.Today(), *task.DueDate)
	switch {
	case days == 0:
		return "due today"
	case days > 0:
		return fmt.Sprintf("due in %dd", days)
	case task.IsCompleted():
		return fmt.Sprintf("was due %dd ago", -days)
	default:
		return fmt.Sprintf("overdue by %dd", -days)
	}
}

func daysBetween(from, to domain.Date) int {
	return int(to.In(time.UTC).Sub(from.In(time.UTC)).Hours() / 24)
}
