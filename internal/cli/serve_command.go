package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"task-manager/internal/api"
	"task-manager/internal/httpapi"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app *App
	api api.API
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app, api: app.api}
}

// Execute serves the JSON API on addr until ctx is cancelled or the process is interrupted.
// An empty addr uses the configured one.
func (c *ServeCommand) Execute(ctx context.Context, addr string) error {
	cfg := *c.app.config
	if addr != "" {
		cfg.Server.Addr = addr
	}

	srv, err := httpapi.NewServer(c.api, &cfg, c.app.logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	c.app.printf("Serving on http://%s\n", ln.Addr())

	return srv.Serve(ctx, ln)
}
