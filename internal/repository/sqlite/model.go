package sqlite

import "time"

// User is a row of the users table.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a row of the sessions table.
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Task is a row of the tasks table.
// DueDate is midnight UTC of the stored calendar date.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time // Using pointer to allow NULL values
	Priority    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Interaction is a row of the ai_history table.
type Interaction struct {
	ID        string
	UserID    string
	Title     string
	Query     string
	Response  string
	CreatedAt time.Time
}

// Settings is a row of the user_settings table.
type Settings struct {
	UserID          string
	Theme           string
	AIResponseStyle string
	Language        string
	UpdatedAt       time.Time
}
