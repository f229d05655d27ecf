package cli

import (
	"context"
	"fmt"

	"task-manager/internal/api"
)

// Credentials are the email and password given as flags. Missing values are prompted for.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

// fill prompts for whatever was not given on the command line. The optional
// name is only asked for when the email or password is prompted too.
func (c *Credentials) fill(app *App, withName bool) error {
	var err error
	interactive := c.Email == "" || c.Password == ""
	if c.Email == "" {
		if c.Email, err = app.prompt("Email: "); err != nil {
			return err
		}
	}
	if withName && interactive && c.Name == "" {
		if c.Name, err = app.prompt("Name (optional): "); err != nil {
			return err
		}
	}
	if c.Password == "" {
		if c.Password, err = app.promptSecret("Password: "); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCommand handles the register command
type RegisterCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewRegisterCommand creates a new register command handler
func NewRegisterCommand(app *App) *RegisterCommand {
	return &RegisterCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute creates the account and signs it in
func (c *RegisterCommand) Execute(ctx context.Context, creds Credentials) error {
	if err := creds.fill(c.app, true); err != nil {
		return err
	}

	user, err := c.api.Register(ctx, creds.Email, creds.Password, creds.Name)
	if err != nil {
		return c.errorHandler.Handle("register", err)
	}
	c.app.printf("Registered %s\n", user.Email)

	return NewLoginCommand(c.app).Execute(ctx, Credentials{Email: creds.Email, Password: creds.Password})
}

// LoginCommand handles the login command
type LoginCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute signs in and keeps the session token for later invocations
func (c *LoginCommand) Execute(ctx context.Context, creds Credentials) error {
	if err := creds.fill(c.app, false); err != nil {
		return err
	}

	user, token, err := c.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return c.errorHandler.Handle("log in", err)
	}
	if err := c.app.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.app.printf("Signed in as %s\n", user.DisplayName())
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute revokes the stored session, if any
func (c *LogoutCommand) Execute(ctx context.Context) error {
	token, err := c.app.tokens.Load()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if token == "" {
		c.app.println("Not signed in")
		return nil
	}

	if err := c.api.Logout(ctx, token); err != nil {
		return c.errorHandler.Handle("log out", err)
	}
	if err := c.app.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	c.app.println("Signed out")
	return nil
}

// WhoAmICommand handles the whoami command
type WhoAmICommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewWhoAmICommand creates a new whoami command handler
func NewWhoAmICommand(app *App) *WhoAmICommand {
	return &WhoAmICommand{app: app, api: app.api, errorHandler: NewErrorHandler()}
}

// Execute prints the signed-in user
func (c *WhoAmICommand) Execute(ctx context.Context) error {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	if user.Name != "" && user.Name != user.Email {
		c.app.printf("%s <%s>\n", user.Name, user.Email)
	} else {
		c.app.println(user.Email)
	}
	return nil
}
