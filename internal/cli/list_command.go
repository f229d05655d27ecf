package cli

import (
	"context"
	"strings"

	"task-manager/internal/api"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/services"
)

// ListOptions are the filters and ordering of the list command
type ListOptions struct {
	Search   string
	Status   string
	Priority string
	Sort     string
}

// criteria converts the options into filter criteria and a sort order
func (o ListOptions) criteria() (domain.FilterCriteria, services.SortOrder, error) {
	status, err := domain.ParseStatusFilter(o.Status)
	if err != nil {
		return domain.FilterCriteria{}, "", errors.NewInvalidInputError("status", o.Status, "must be all, todo, in-progress or completed")
	}
	priority, err := domain.ParsePriorityFilter(o.Priority)
	if err != nil {
		return domain.FilterCriteria{}, "", errors.NewInvalidInputError("priority", o.Priority, "must be all, low, medium or high")
	}
	order, err := services.ParseSortOrder(o.Sort)
	if err != nil {
		return domain.FilterCriteria{}, "", err
	}

	criteria := domain.FilterCriteria{
		SearchTerm: strings.TrimSpace(o.Search),
		Status:     status,
		Priority:   priority,
	}
	return criteria, order, nil
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints the tasks matching opts. Positional args are joined into the search term.
func (c *ListCommand) Execute(ctx context.Context, args []string, opts ListOptions) error {
	if len(args) > 0 && opts.Search == "" {
		opts.Search = strings.Join(args, " ")
	}

	criteria, order, err := opts.criteria()
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	view, err := c.api.TaskView(ctx, criteria, order)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}

	if len(view.Tasks) == 0 {
		if view.Stats.Total == 0 {
			c.app.println("No tasks yet. Add one with 'tm add <title>'.")
		} else {
			c.app.println("No tasks found")
		}
		return nil
	}

	if err := c.app.printTasks(view.Tasks); err != nil {
		return err
	}
	c.app.printf("\n%d of %d tasks shown, %d%% complete, %d overdue\n",
		len(view.Tasks), view.Stats.Total, view.Stats.CompletionRate, view.Stats.Overdue)
	return nil
}

// OverdueCommand handles the overdue command
type OverdueCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewOverdueCommand creates a new overdue command handler
func NewOverdueCommand(app *App) *OverdueCommand {
	return &OverdueCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints the open tasks whose due date has passed, earliest first
func (c *OverdueCommand) Execute(ctx context.Context) error {
	tasks, err := c.api.OverdueTasks(ctx)
	if err != nil {
		return c.errorHandler.Handle("list overdue tasks", err)
	}

	if len(tasks) == 0 {
		c.app.println("Nothing is overdue")
		return nil
	}
	return c.app.printTasks(tasks)
}
