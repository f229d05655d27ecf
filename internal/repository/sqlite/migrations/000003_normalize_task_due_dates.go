package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"task-manager/internal/logging"
)

func init() {
	RegisterGoMigration(3, Up_000003_normalize_task_due_dates, Down_000003_normalize_task_due_dates)
}

// Up_000003_normalize_task_due_dates rewrites due dates that were stored as full
// timestamps to the YYYY-MM-DD form. This covers:
// - RFC3339 timestamps (2024-01-01T00:00:00Z)
// - Go default time strings, with or without monotonic clock suffix (m=+0.000000000)
// - Space separated date and time (2024-01-01 00:00:00)
// Values that cannot be parsed are cleared, leaving the task without a deadline.
// tm writes YYYY-MM-DD only; other forms come from writers outside the application.
func Up_000003_normalize_task_due_dates(tx *sql.Tx) error {
	type row struct {
		id  string
		due string
	}
	var pending []row

	// Read all rows into memory first to avoid locking issues
	rows, err := tx.Query("SELECT id, due_date FROM tasks WHERE due_date IS NOT NULL AND length(due_date) <> 10")
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.due); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task row: %w", err)
		}
		pending = append(pending, r)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating tasks: %w", err)
	}
	rows.Close()

	stmt, err := tx.Prepare("UPDATE tasks SET due_date = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare due_date update statement: %w", err)
	}
	defer stmt.Close()

	updated, cleared := 0, 0
	for _, r := range pending {
		var value interface{}
		if date, err := normalizeDueDate(r.due); err != nil {
			logging.Debugf("clearing unparseable due_date for task %s: %v\n", r.id, err)
			cleared++
		} else {
			value = date
			updated++
		}
		if _, err := stmt.Exec(value, r.id); err != nil {
			return fmt.Errorf("failed to update due_date for task %s: %w", r.id, err)
		}
	}

	logging.Debugf("due date migration: %d rows, %d normalized, %d cleared\n", len(pending), updated, cleared)
	return nil
}

// Down_000003_normalize_task_due_dates is a no-op: date-only values are valid in
// the earlier schema.
func Down_000003_normalize_task_due_dates(tx *sql.Tx) error {
	return nil
}

// normalizeDueDate returns the calendar date of a stored timestamp, as written.
func normalizeDueDate(value string) (string, error) {
	value = stripMonotonicSuffix(strings.TrimSpace(value))

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999 -0700",
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", fmt.Errorf("could not parse due date: %s", value)
}

// stripMonotonicSuffix removes the monotonic clock suffix from Go time strings.
func stripMonotonicSuffix(value string) string {
	if idx := strings.Index(value, " m="); idx != -1 {
		return value[:idx]
	}
	return value
}
