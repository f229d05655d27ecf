package services

import (
	"log/slog"

	"task-manager/internal/config"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/session"
)

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimeService      TimeService
	AuthService      AuthService
	TaskService      TaskService
	SearchService    SearchService
	ReportingService ReportingService
	AssistantService AssistantService
	HistoryService   HistoryService
	SettingsService  SettingsService
}

// ContainerOptions overrides the sources of time and randomness.
type ContainerOptions struct {
	Clock  Clock
	Picker Picker
}

// NewServiceContainer wires every service to repo. The settings service
// subscribes to provider until Close is called.
func NewServiceContainer(repo sqlite.Repository, provider *session.Provider, cfg *config.Config, logger *slog.Logger, opts ContainerOptions) *ServiceContainer {
	clock := opts.Clock
	taskService := NewTaskService(repo, cfg, clock, logger)
	settingsService := NewSettingsService(repo, provider, clock, logger)

	return &ServiceContainer{
		TimeService:      NewTimeService(clock),
		AuthService:      NewAuthService(repo, cfg, clock, logger),
		TaskService:      taskService,
		SearchService:    NewSearchService(taskService, clock),
		ReportingService: NewReportingService(repo, taskService, clock, cfg.Display.RecentLimit),
		AssistantService: NewAssistantService(repo, taskService, settingsService, clock, opts.Picker, logger),
		HistoryService:   NewHistoryService(repo),
		SettingsService:  settingsService,
	}
}

// Close releases the subscriptions held by the services
func (c *ServiceContainer) Close() {
	c.SettingsService.Close()
}
