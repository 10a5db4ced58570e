package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/onboard/internal"
	"github.com/starford/onboard/internal/index"
	"github.com/starford/onboard/internal/mcpserver"
	pkgconfig "github.com/starford/onboard/pkg/config"
)

const version = "0.1.0"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never mix with protocol messages.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := internal.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	services, err := internal.Setup(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	return serveMCP(ctx, services, mcpserver.New(services.Pages, version).ServeStdio)
}

// serveMCP runs serve next to the index watcher and returns once both have
// stopped, so the watcher is done with the index before it is closed.
func serveMCP(ctx context.Context, services *internal.Services, serve func() error) error {
	logger := services.Logger

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	g.Go(func() error {
		err := index.Watch(watchCtx, services.DB, services.Store, services.Formatter, services.Config.Content.Path, logger, nil)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		defer stopWatch()
		return serve()
	})

	return g.Wait()
}

func main() {
	cmd := &cli.Command{
		Name:    "onboard",
		Usage:   "Onboarding guides with generated tables of contents",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "toc",
				Usage:     "Print the table of contents and annotated text of a Markdown file",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "marker",
						Aliases: []string{"m"},
						Usage:   "Heading marker character, overrides toc.marker",
					},
				},
				Action: runTOC,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
