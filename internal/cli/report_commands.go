package cli

import (
	"context"
	"fmt"

	"task-manager/internal/api"
	"task-manager/internal/domain"
)

// barWidth is the width of the completion bars in analytics output
const barWidth = 20

// DashboardCommand handles the dashboard command
type DashboardCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewDashboardCommand creates a new dashboard command handler
func NewDashboardCommand(app *App) *DashboardCommand {
	return &DashboardCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints the counters, the newest tasks and the overdue ones
func (c *DashboardCommand) Execute(ctx context.Context) error {
	dashboard, err := c.api.Dashboard(ctx)
	if err != nil {
		return c.errorHandler.Handle("load dashboard", err)
	}

	if err := c.app.printStats(dashboard.Stats); err != nil {
		return err
	}

	if len(dashboard.RecentTasks) > 0 {
		c.app.println("\nRecent tasks:")
		if err := c.app.printTasks(dashboard.RecentTasks); err != nil {
			return err
		}
	}
	if len(dashboard.OverdueTasks) > 0 {
		c.app.println("\nOverdue:")
		if err := c.app.printTasks(dashboard.OverdueTasks); err != nil {
			return err
		}
	}
	return nil
}

// AnalyticsCommand handles the analytics command
type AnalyticsCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewAnalyticsCommand creates a new analytics command handler
func NewAnalyticsCommand(app *App) *AnalyticsCommand {
	return &AnalyticsCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints completion by priority and the status and priority distributions
func (c *AnalyticsCommand) Execute(ctx context.Context) error {
	analytics, err := c.api.Analytics(ctx)
	if err != nil {
		return c.errorHandler.Handle("load analytics", err)
	}

	c.app.printf("Overall: %s %3d%% of %d tasks\n",
		progressBar(analytics.Stats.CompletionRate, barWidth), analytics.Stats.CompletionRate, analytics.Stats.Total)

	c.app.println("\nCompletion by priority:")
	w := newTable(c.app.out)
	for i := len(domain.Priorities) - 1; i >= 0; i-- {
		p := domain.Priorities[i]
		rate := analytics.ByPriority[p]
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%3d%%\t(%d tasks)\n", p, progressBar(rate.Rate, barWidth), rate.Rate, rate.Total)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.app.println("\nBy status:")
	w = newTable(c.app.out)
	for _, s := range domain.Statuses {
		_, _ = fmt.Fprintf(w, "  %s\t%d\n", s, analytics.Distribution.ByStatus[s])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.app.println("\nBy priority:")
	w = newTable(c.app.out)
	for i := len(domain.Priorities) - 1; i >= 0; i-- {
		p := domain.Priorities[i]
		_, _ = fmt.Fprintf(w, "  %s\t%d\n", p, analytics.Distribution.ByPriority[p])
	}
	return w.Flush()
}
