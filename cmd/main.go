package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"syncra/internal/match"
	"syncra/internal/normalize"
	"syncra/internal/plex"
	"syncra/internal/repositories"
	"syncra/internal/shared"
	"syncra/internal/tasks"
)

func main() {
	logger := shared.NewLogger(nil)

	shared.LoadEnv()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	library := plex.NewClient(config.Plex, nil, logger)

	matcher := match.New(library, normalize.MustNew(normalize.Options{}), match.Config{
		AcceptThreshold:      config.Matcher.AcceptThreshold,
		SeparationMargin:     config.Matcher.SeparationMargin,
		FuzzyThreshold:       config.Matcher.FuzzyThreshold,
		DurationToleranceSec: config.Matcher.DurationToleranceSec,
	})

	var runs *repositories.RunRepository
	var store tasks.RunStore
	if db, err := shared.NewDatabase(config.Database); err != nil {
		logger.Warn("run history unavailable", "error", err)
	} else if err := shared.RunMigrations(db); err != nil {
		logger.Warn("run history unavailable", "error", err)
		db.Close()
	} else {
		runs = repositories.NewRunRepository(db)
		store = runs
	}

	engine := tasks.NewEngine(library, matcher, store, config.Sync, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Library: library,
		Engine:  engine,
		Runs:    runs,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "syncra",
		Usage:    "Sync playlists from files and streaming services into a Plex library",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
