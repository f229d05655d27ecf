package main

import (
	"os"

	"task-manager/internal/api"
	"task-manager/internal/cli"
	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/services"
	"task-manager/internal/session"
)

// newApp opens the database named by cfg and wires the services, the API
// and the CLI around it. Closing the app closes them in reverse order.
func newApp(cfg *config.Config) (*cli.App, error) {
	level := cfg.Logging.Level
	if cfg.Application.Verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Logging.Format, os.Stderr)

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, err
	}

	provider := session.NewProvider()
	container := services.NewServiceContainer(repo, provider, cfg, logger, services.ContainerOptions{})

	return cli.NewApp(api.New(container, provider), cfg,
		cli.WithLogger(logger),
		cli.OnClose(repo.Close),
		cli.OnClose(func() error { provider.Close(); return nil }),
		cli.OnClose(func() error { container.Close(); return nil }),
	), nil
}
