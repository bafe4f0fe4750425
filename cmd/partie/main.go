package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tabletop-ledger/partie/app"
	"github.com/tabletop-ledger/partie/app/shared/observability"
	"github.com/tabletop-ledger/partie/config"
	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "partie",
		Usage:   "wargame match scoring service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"PARTIE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			exportCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// bootstrap loads the configuration and builds the application around it.
// The returned func releases everything bootstrap acquired.
func bootstrap(c *cli.Context) (*app.App, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	obs, err := observability.Init(c.Context, config.ToObsConfig(cfg, version), os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init observability: %w", err)
	}
	a, err := app.New(c.Context, cfg, obs, app.Options{})
	if err != nil {
		_ = obs.Shutdown(context.Background())
		return nil, nil, err
	}
	return a, func() {
		if err := a.Close(); err != nil {
			obs.Logger.Error("Failed to close application", "error", err)
		}
		if err := obs.Shutdown(context.Background()); err != nil {
			obs.Logger.Error("Failed to flush traces", "error", err)
		}
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			ctx, stop := app.ShutdownContext(c.Context)
			defer stop()
			c.Context = ctx

			a, release, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer release()

			if err := a.Start(ctx); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			a.Logger.Info("Application shut down gracefully")
			return nil
		},
	}
}
