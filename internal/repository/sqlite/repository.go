package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations.
// Owner-scoped operations never see rows of other users.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id, ownerID string) (*Task, error)
	ListTasks(ctx context.Context, ownerID string) ([]*Task, error)
	ListRecentTasks(ctx context.Context, ownerID string, limit int) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id, ownerID string) error

	// Assistant history
	CreateInteraction(ctx context.Context, in *Interaction) error
	ListInteractions(ctx context.Context, ownerID string) ([]*Interaction, error)
	GetInteraction(ctx context.Context, id, ownerID string) (*Interaction, error)
	DeleteInteraction(ctx context.Context, id, ownerID string) error

	// Settings
	GetSettings(ctx context.Context, ownerID string) (*Settings, error)
	UpsertSettings(ctx context.Context, settings *Settings) error

	// Utility
	Close() error
}

// Options tunes a repository. Zero timeouts disable the per-call deadline.
type Options struct {
	QueryTimeout   time.Duration
	WriteTimeout   time.Duration
	DirPermissions os.FileMode
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates a repository, creating the parent directory of dbPath
// when needed and running pending migrations.
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	if dbPath != ":memory:" && opts.DirPermissions != 0 {
		if err := os.MkdirAll(filepath.Dir(dbPath), opts.DirPermissions); err != nil {
			return nil, errors.NewDatabaseError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

func (r *SQLiteRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opts.WriteTimeout)
}

const userColumns = `id, email, name, password_hash, created_at`

// CreateUser inserts a user. A duplicate email is reported as a conflict.
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`
	return ExecuteInsert(ctx, r.db, query, "user", user.Email,
		user.ID, user.Email, user.Name, user.PasswordHash, FormatTimeForDB(user.CreatedAt))
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", id, id)
}

// GetUserByEmail retrieves a user by email, ignoring case
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? COLLATE NOCASE`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", email, email)
}

// CreateSession stores a session keyed by its token hash
func (r *SQLiteRepository) CreateSession(ctx context.Context, session *Session) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`
	return ExecuteInsert(ctx, r.db, query, "session", session.UserID,
		session.TokenHash, session.UserID, FormatTimeForDB(session.ExpiresAt), FormatTimeForDB(session.CreatedAt))
}

// GetSessionByTokenHash retrieves a session by the hash of its token
func (r *SQLiteRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash = ?`
	return QuerySingle(ctx, r.db, query, ScanSession, "session", "token", tokenHash)
}

// DeleteSession removes one session
func (r *SQLiteRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `DELETE FROM sessions WHERE token_hash = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "session", "token", tokenHash)
}

// DeleteSessionsByUser removes every session of a user. Having none is not an error.
func (r *SQLiteRepository) DeleteSessionsByUser(ctx context.Context, userID string) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return HandleDatabaseError("delete sessions", err)
	}
	return nil
}

const taskColumns = `id, user_id, title, description, due_date, priority, status, created_at, updated_at`

// CreateTask inserts a task. ID and timestamps must already be set.
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return ExecuteInsert(ctx, r.db, query, "task", task.ID,
		task.ID, task.UserID, task.Title, task.Description, FormatDateForDB(task.DueDate),
		task.Priority, task.Status, FormatTimeForDB(task.CreatedAt), FormatTimeForDB(task.UpdatedAt))
}

// GetTask retrieves a task by ID within the owner's tasks
func (r *SQLiteRepository) GetTask(ctx context.Context, id, ownerID string) (*Task, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", id, id, ownerID)
}

// ListTasks retrieves all of the owner's tasks, newest first
func (r *SQLiteRepository) ListTasks(ctx context.Context, ownerID string) ([]*Task, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id ASC`
	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks", ownerID)
}

// ListRecentTasks retrieves at most limit of the owner's newest tasks
func (r *SQLiteRepository) ListRecentTasks(ctx context.Context, ownerID string, limit int) ([]*Task, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id ASC LIMIT ?`
	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks", ownerID, limit)
}

// UpdateTask overwrites the mutable fields of a task owned by task.UserID
func (r *SQLiteRepository) UpdateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	UPDATE tasks
	SET title = ?, description = ?, due_date = ?, priority = ?, status = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query, "task", task.ID,
		task.Title, task.Description, FormatDateForDB(task.DueDate), task.Priority, task.Status,
		FormatTimeForDB(task.UpdatedAt), task.ID, task.UserID)
}

// DeleteTask deletes a task by ID within the owner's tasks
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `DELETE FROM tasks WHERE id = ? AND user_id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", id, id, ownerID)
}

const interactionColumns = `id, user_id, title, query, response, created_at`

// CreateInteraction stores one assistant exchange
func (r *SQLiteRepository) CreateInteraction(ctx context.Context, in *Interaction) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `INSERT INTO ai_history (` + interactionColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	return ExecuteInsert(ctx, r.db, query, "history entry", in.ID,
		in.ID, in.UserID, in.Title, in.Query, in.Response, FormatTimeForDB(in.CreatedAt))
}

// ListInteractions retrieves the owner's history, newest first
func (r *SQLiteRepository) ListInteractions(ctx context.Context, ownerID string) ([]*Interaction, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + interactionColumns + ` FROM ai_history WHERE user_id = ? ORDER BY created_at DESC, id ASC`
	return QueryMultiple(ctx, r.db, query, ScanInteractions, "history", ownerID)
}

// GetInteraction retrieves one history entry of the owner
func (r *SQLiteRepository) GetInteraction(ctx context.Context, id, ownerID string) (*Interaction, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + interactionColumns + ` FROM ai_history WHERE id = ? AND user_id = ?`
	return QuerySingle(ctx, r.db, query, ScanInteraction, "history entry", id, id, ownerID)
}

// DeleteInteraction deletes one history entry of the owner
func (r *SQLiteRepository) DeleteInteraction(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `DELETE FROM ai_history WHERE id = ? AND user_id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "history entry", id, id, ownerID)
}

// GetSettings retrieves the owner's settings row
func (r *SQLiteRepository) GetSettings(ctx context.Context, ownerID string) (*Settings, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT user_id, theme, ai_response_style, language, updated_at FROM user_settings WHERE user_id = ?`
	return QuerySingle(ctx, r.db, query, ScanSettings, "settings", ownerID, ownerID)
}

// UpsertSettings inserts or replaces the owner's settings row
func (r *SQLiteRepository) UpsertSettings(ctx context.Context, settings *Settings) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	INSERT INTO user_settings (user_id, theme, ai_response_style, language, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		theme = excluded.theme,
		ai_response_style = excluded.ai_response_style,
		language = excluded.language,
		updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, settings.UserID, settings.Theme, settings.AIResponseStyle,
		settings.Language, FormatTimeForDB(settings.UpdatedAt))
	if err != nil {
		return HandleDatabaseError("upsert settings", err)
	}
	return nil
}
