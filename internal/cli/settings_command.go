package cli

import (
	"context"
	"fmt"
	"strings"

	"task-manager/internal/api"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
)

// SettingsCommand handles the settings subcommands
type SettingsCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewSettingsCommand creates a new settings command handler
func NewSettingsCommand(app *App) *SettingsCommand {
	return &SettingsCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Show prints the current preferences
func (c *SettingsCommand) Show(ctx context.Context) error {
	settings, err := c.api.GetSettings(ctx)
	if err != nil {
		return c.errorHandler.Handle("load settings", err)
	}
	return c.print(*settings)
}

// Set changes one preference: theme, style or language
func (c *SettingsCommand) Set(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tm settings set <theme|style|language> <value>")
	}

	value := args[1]
	var update api.SettingsUpdate
	switch strings.ToLower(args[0]) {
	case "theme":
		update.Theme = &value
	case "style", "ai-style", "ai_response_style":
		update.AIResponseStyle = &value
	case "language", "lang":
		update.Language = &value
	default:
		return c.errorHandler.Handle("update settings",
			errors.NewInvalidInputError("setting", args[0], "must be theme, style or language"))
	}

	settings, err := c.api.UpdateSettings(ctx, update)
	if err != nil {
		return c.errorHandler.Handle("update settings", err)
	}
	return c.print(*settings)
}

func (c *SettingsCommand) print(settings domain.Settings) error {
	w := newTable(c.app.out)
	_, _ = fmt.Fprintf(w, "Theme:\t%s\n", settings.Theme)
	_, _ = fmt.Fprintf(w, "Assistant style:\t%s\n", settings.AIResponseStyle)
	_, _ = fmt.Fprintf(w, "Language:\t%s\n", settings.Language)
	return w.Flush()
}
