package services

import (
	"context"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
	"task-manager/internal/repository/sqlite"
)

const (
	// DefaultRecentTasksLimit is the default limit for recent tasks in dashboard
	DefaultRecentTasksLimit = 5
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo        sqlite.Repository
	mapper      *domain.Mapper
	taskService TaskService
	clock       Clock
	recentLimit int
}

// NewReportingService creates a new ReportingService instance.
// A non-positive recentLimit uses DefaultRecentTasksLimit.
func NewReportingService(repo sqlite.Repository, taskService TaskService, clock Clock, recentLimit int) ReportingService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentTasksLimit
	}
	return &reportingServiceImpl{
		repo:        repo,
		mapper:      domain.NewMapper(),
		taskService: taskService,
		clock:       clock,
		recentLimit: recentLimit,
	}
}

// GetDashboard returns stats over every task, the newest tasks and the overdue ones
func (r *reportingServiceImpl) GetDashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	tasks, err := r.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	recent, err := r.repo.ListRecentTasks(ctx, ownerID, r.recentLimit)
	if err != nil {
		return nil, err
	}

	now := r.clock.now()
	return &Dashboard{
		Stats:        engine.ComputeStats(tasks, now),
		RecentTasks:  r.mapper.Task.FromDatabaseSlice(recent),
		OverdueTasks: engine.Overdue(tasks, now),
	}, nil
}

// GetAnalytics returns completion rates by priority and the task distribution
func (r *reportingServiceImpl) GetAnalytics(ctx context.Context, ownerID string) (*Analytics, error) {
	tasks, err := r.taskService.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Stats:        engine.ComputeStats(tasks, r.clock.now()),
		ByPriority:   engine.ComputeCompletionRateByPriority(tasks),
		Distribution: engine.ComputeDistribution(tasks),
	}, nil
}
