package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"task-manager/internal/api"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/services"
)

// resolveTaskID accepts a full task ID or an unambiguous prefix of one
func resolveTaskID(ctx context.Context, apiInstance api.API, ref string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", errors.NewValidationError("task ID is required", nil)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return ref, nil
	}

	tasks, err := apiInstance.ListTasks(ctx, domain.NoFilter(), services.SortByCreated)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return matchIDPrefix("task", ref, ids)
}

// matchIDPrefix returns the one ID in ids that starts with ref
func matchIDPrefix(resource, ref string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.NewNotFoundError(resource, ref)
	case 1:
		return matches[0], nil
	}
	return "", errors.NewInvalidInputError("id", ref, fmt.Sprintf("matches %d %ss, give more characters", len(matches), resource))
}

func parsePriority(s string) (domain.Priority, error) {
	p, err := domain.ParsePriority(s)
	if err != nil {
		return "", errors.NewInvalidInputError("priority", s, "must be low, medium or high")
	}
	return p, nil
}

func parseStatus(s string) (domain.Status, error) {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return "", errors.NewInvalidInputError("status", s, "must be todo, in-progress or completed")
	}
	return st, nil
}

// AddOptions are the optional fields of a new task
type AddOptions struct {
	Description string
	Due         string
	Priority    string
	Status      string
}

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute creates a task titled by args
func (c *AddCommand) Execute(ctx context.Context, args []string, opts AddOptions) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tm add <title> [--due DATE] [--priority low|medium|high]")
	}

	draft, err := c.buildDraft(strings.Join(args, " "), opts)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}

	task, err := c.api.CreateTask(ctx, draft)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}

	c.app.printf("Added %s %q\n", shortID(task.ID), task.Title)
	return nil
}

func (c *AddCommand) buildDraft(title string, opts AddOptions) (domain.TaskDraft, error) {
	draft := domain.TaskDraft{Title: title, Description: opts.Description}

	if opts.Due != "" {
		due, err := c.api.ParseDueDate(opts.Due)
		if err != nil {
			return draft, err
		}
		draft.DueDate = due
	}
	if opts.Priority != "" {
		p, err := parsePriority(opts.Priority)
		if err != nil {
			return draft, err
		}
		draft.Priority = p
	}
	if opts.Status != "" {
		st, err := parseStatus(opts.Status)
		if err != nil {
			return draft, err
		}
		draft.Status = st
	}
	return draft, nil
}

// ShowCommand handles the show command
type ShowCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints one task in full
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tm show <id>")
	}

	id, err := resolveTaskID(ctx, c.api, args[0])
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}
	task, err := c.api.GetTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}
	return c.app.printTask(*task)
}

// EditOptions are the fields to change. Nil fields are left as they are.
type EditOptions struct {
	Title       *string
	Description *string
	Due         *string
	ClearDue    bool
	Priority    *string
	Status      *string
}

// EditCommand handles the edit command
type EditCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute applies opts to the task named by args[0]
func (c *EditCommand) Execute(ctx context.Context, args []string, opts EditOptions) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tm edit <id> [--title T] [--due DATE|--clear-due] [--priority P] [--status S]")
	}

	patch, err := c.buildPatch(opts)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	id, err := resolveTaskID(ctx, c.api, args[0])
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	task, err := c.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	c.app.printf("Updated %s %q\n", shortID(task.ID), task.Title)
	return nil
}

func (c *EditCommand) buildPatch(opts EditOptions) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:        opts.Title,
		Description:  opts.Description,
		ClearDueDate: opts.ClearDue,
	}

	if opts.Due != nil && !opts.ClearDue {
		due, err := c.api.ParseDueDate(*opts.Due)
		if err != nil {
			return patch, err
		}
		patch.DueDate = due
	}
	if opts.Priority != nil {
		p, err := parsePriority(*opts.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if opts.Status != nil {
		st, err := parseStatus(*opts.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &st
	}
	return patch, nil
}

// DoneCommand handles the done command
type DoneCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute toggles completion of each task named in args
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tm done <id>...")
	}

	for _, ref := range args {
		id, err := resolveTaskID(ctx, c.api, ref)
		if err != nil {
			return c.errorHandler.Handle("toggle task", err)
		}
		task, err := c.api.ToggleComplete(ctx, id)
		if err != nil {
			return c.errorHandler.Handle("toggle task", err)
		}

		if task.IsCompleted() {
			c.app.printf("Completed %q\n", task.Title)
		} else {
			c.app.printf("Reopened %q\n", task.Title)
		}
	}
	return nil
}

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute deletes the task named by args[0]. Without force the user is asked first.
func (c *DeleteCommand) Execute(ctx context.Context, args []string, force bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tm delete <id> [--force]")
	}

	id, err := resolveTaskID(ctx, c.api, args[0])
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	task, err := c.api.GetTask(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	if !force {
		ok, err := c.app.confirm(fmt.Sprintf("Delete %q?", task.Title))
		if err != nil {
			return err
		}
		if !ok {
			c.app.println("Delete cancelled.")
			return nil
		}
	}

	if err := c.api.DeleteTask(ctx, id); err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	c.app.printf("Deleted %q\n", task.Title)
	return nil
}
