package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanAll drains rows through scan.
func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ScanUser scans a single user from a database row
func ScanUser(scanner Scanner) (*User, error) {
	user := &User{}
	var createdAt string

	if err := scanner.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if user.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("user %s: created_at: %w", user.ID, err)
	}
	return user, nil
}

// ScanSession scans a single session from a database row
func ScanSession(scanner Scanner) (*Session, error) {
	session := &Session{}
	var expiresAt, createdAt string

	if err := scanner.Scan(&session.TokenHash, &session.UserID, &expiresAt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if session.ExpiresAt, err = ParseTimeFromDB(expiresAt); err != nil {
		return nil, fmt.Errorf("session: expires_at: %w", err)
	}
	if session.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("session: created_at: %w", err)
	}
	return session, nil
}

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var dueDate sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&dueDate,
		&task.Priority,
		&task.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid && dueDate.String != "" {
		due, err := ParseDateFromDB(dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: due_date: %w", task.ID, err)
		}
		task.DueDate = &due
	}
	if task.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("task %s: created_at: %w", task.ID, err)
	}
	if task.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: updated_at: %w", task.ID, err)
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	return scanAll(rows, ScanTask)
}

// ScanInteraction scans a single history entry from a database row
func ScanInteraction(scanner Scanner) (*Interaction, error) {
	in := &Interaction{}
	var createdAt string

	if err := scanner.Scan(&in.ID, &in.UserID, &in.Title, &in.Query, &in.Response, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if in.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, fmt.Errorf("interaction %s: created_at: %w", in.ID, err)
	}
	return in, nil
}

// ScanInteractions scans multiple history entries from database rows
func ScanInteractions(rows Rows) ([]*Interaction, error) {
	return scanAll(rows, ScanInteraction)
}

// ScanSettings scans a user's settings from a database row
func ScanSettings(scanner Scanner) (*Settings, error) {
	s := &Settings{}
	var updatedAt string

	if err := scanner.Scan(&s.UserID, &s.Theme, &s.AIResponseStyle, &s.Language, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if s.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, fmt.Errorf("settings %s: updated_at: %w", s.UserID, err)
	}
	return s, nil
}
