package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/chainydev/chainyctl/internal/auth"
	"github.com/chainydev/chainyctl/internal/repositories"
	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	sessions := auth.NewSessionManager(repositories.NewSessionRepository(db), logger)
	pending := repositories.NewPendingLoginRepository(db)
	links := repositories.NewLinkRepository(db)

	client := services.NewClient(config, sessions, nil, logger)
	redirector := auth.NewRedirector(config, pending, logger)
	resolver := auth.NewResolver(pending, sessions, client, logger)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		DB:         db,
		Service:    client,
		Sessions:   sessions,
		Pending:    pending,
		Links:      links,
		Redirector: redirector,
		Resolver:   resolver,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "chainyctl",
		Usage:    "Manage Chainy short links from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
