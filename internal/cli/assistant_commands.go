package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"task-manager/internal/api"
	"task-manager/internal/errors"
)

// resolveHistoryID accepts a full interaction ID or an unambiguous prefix of one
func resolveHistoryID(ctx context.Context, apiInstance api.API, ref string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", errors.NewValidationError("history ID is required", nil)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return ref, nil
	}

	history, err := apiInstance.ListHistory(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(history))
	for i, in := range history {
		ids[i] = in.ID
	}
	return matchIDPrefix("interaction", ref, ids)
}

// AskCommand handles the ask command
type AskCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewAskCommand creates a new ask command handler
func NewAskCommand(app *App) *AskCommand {
	return &AskCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute sends args as one question to the assistant and prints the reply
func (c *AskCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tm ask <question>")
	}

	interaction, err := c.api.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("ask assistant", err)
	}

	c.app.println(interaction.Response)
	return nil
}

// HistoryCommand handles the history subcommands
type HistoryCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewHistoryCommand creates a new history command handler
func NewHistoryCommand(app *App) *HistoryCommand {
	return &HistoryCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// List prints past interactions, newest first
func (c *HistoryCommand) List(ctx context.Context) error {
	history, err := c.api.ListHistory(ctx)
	if err != nil {
		return c.errorHandler.Handle("list history", err)
	}

	if len(history) == 0 {
		c.app.println("No conversations yet. Try 'tm ask what should I do first?'")
		return nil
	}

	w := newTable(c.app.out)
	_, _ = fmt.Fprintln(w, "ID\tWHEN\tTITLE")
	for _, in := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(in.ID), c.app.formatTimestamp(in.CreatedAt), in.Title)
	}
	return w.Flush()
}

// Show prints one interaction in full
func (c *HistoryCommand) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tm history show <id>")
	}

	id, err := resolveHistoryID(ctx, c.api, args[0])
	if err != nil {
		return c.errorHandler.Handle("show interaction", err)
	}
	in, err := c.api.GetHistory(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("show interaction", err)
	}

	c.app.printf("Asked %s\n\n", c.app.formatTimestamp(in.CreatedAt))
	c.app.printf("> %s\n\n", in.Query)
	c.app.println(in.Response)
	return nil
}

// Delete removes one interaction
func (c *HistoryCommand) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tm history delete <id>")
	}

	id, err := resolveHistoryID(ctx, c.api, args[0])
	if err != nil {
		return c.errorHandler.Handle("delete interaction", err)
	}
	if err := c.api.DeleteHistory(ctx, id); err != nil {
		return c.errorHandler.Handle("delete interaction", err)
	}

	c.app.printf("Deleted %s\n", shortID(id))
	return nil
}
