package domain

import (
	"time"

	"task-manager/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlite.Task {
	return sqlite.Task{
		ID:          domainTask.ID,
		UserID:      domainTask.UserID,
		Title:       domainTask.Title,
		Description: domainTask.Description,
		DueDate:     dateToDatabase(domainTask.DueDate),
		Priority:    string(domainTask.Priority),
		Status:      string(domainTask.Status),
		CreatedAt:   domainTask.CreatedAt,
		UpdatedAt:   domainTask.UpdatedAt,
	}
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) Task {
	return Task{
		ID:          dbTask.ID,
		UserID:      dbTask.UserID,
		Title:       dbTask.Title,
		Description: dbTask.Description,
		DueDate:     dateFromDatabase(dbTask.DueDate),
		Priority:    Priority(dbTask.Priority),
		Status:      Status(dbTask.Status),
		CreatedAt:   dbTask.CreatedAt,
		UpdatedAt:   dbTask.UpdatedAt,
	}
}

// FromDatabaseSlice converts a slice of database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(*task)
	}
	return domainTasks
}

func dateToDatabase(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

func dateFromDatabase(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(u User) sqlite.User {
	return sqlite.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(u sqlite.User) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// SessionMapper handles conversion between domain and database Session models.
type SessionMapper struct{}

// ToDatabase converts a domain Session to a database Session.
func (m *SessionMapper) ToDatabase(s Session) sqlite.Session {
	return sqlite.Session{
		TokenHash: s.TokenHash,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// FromDatabase converts a database Session to a domain Session.
func (m *SessionMapper) FromDatabase(s sqlite.Session) Session {
	return Session{
		TokenHash: s.TokenHash,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// InteractionMapper handles conversion between domain and database history entries.
type InteractionMapper struct{}

// ToDatabase converts a domain Interaction to a database Interaction.
func (m *InteractionMapper) ToDatabase(in Interaction) sqlite.Interaction {
	return sqlite.Interaction{
		ID:        in.ID,
		UserID:    in.UserID,
		Title:     in.Title,
		Query:     in.Query,
		Response:  in.Response,
		CreatedAt: in.CreatedAt,
	}
}

// FromDatabase converts a database Interaction to a domain Interaction.
func (m *InteractionMapper) FromDatabase(in sqlite.Interaction) Interaction {
	return Interaction{
		ID:        in.ID,
		UserID:    in.UserID,
		Title:     in.Title,
		Query:     in.Query,
		Response:  in.Response,
		CreatedAt: in.CreatedAt,
	}
}

// FromDatabaseSlice converts a slice of database Interactions to domain Interactions.
func (m *InteractionMapper) FromDatabaseSlice(items []*sqlite.Interaction) []Interaction {
	out := make([]Interaction, len(items))
	for i, in := range items {
		out[i] = m.FromDatabase(*in)
	}
	return out
}

// SettingsMapper handles conversion between domain and database Settings.
type SettingsMapper struct{}

// ToDatabase converts domain Settings to database Settings.
func (m *SettingsMapper) ToDatabase(s Settings) sqlite.Settings {
	return sqlite.Settings{
		UserID:          s.UserID,
		Theme:           string(s.Theme),
		AIResponseStyle: string(s.AIResponseStyle),
		Language:        s.Language,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDatabase converts database Settings to domain Settings.
func (m *SettingsMapper) FromDatabase(s sqlite.Settings) Settings {
	return Settings{
		UserID:          s.UserID,
		Theme:           Theme(s.Theme),
		AIResponseStyle: AIResponseStyle(s.AIResponseStyle),
		Language:        s.Language,
		UpdatedAt:       s.UpdatedAt,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task        *TaskMapper
	User        *UserMapper
	Session     *SessionMapper
	Interaction *InteractionMapper
	Settings    *SettingsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:        NewTaskMapper(),
		User:        &UserMapper{},
		Session:     &SessionMapper{},
		Interaction: &InteractionMapper{},
		Settings:    &SettingsMapper{},
	}
}
