package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"syncra/internal/tasks"
)

// SyncImport syncs a source playlist into a library playlist, creating it
// when absent and editing it toward the source order otherwise.
func (r *Runner) SyncImport(ctx context.Context, cmd *cli.Command) error {
	source := cmd.StringArg("source")

	adapter, err := r.sourceAdapter(source)
	if err != nil {
		return err
	}
	name, err := targetName(cmd, source)
	if err != nil {
		return err
	}

	r.logger.Info("starting import", "source", source, "playlist", name)
	r.writePlain("Importing %s into %q...\n\n", source, name)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.printProgress(progressCh)

	report, err := r.engine.Import(ctx, progressCh, adapter, name)
	close(progressCh)

	if err != nil {
		return err
	}
	return r.printReport(report, cmd.Bool("json"))
}

// SyncConvert copies a source playlist into a brand new library playlist.
func (r *Runner) SyncConvert(ctx context.Context, cmd *cli.Command) error {
	source := cmd.StringArg("source")

	adapter, err := r.sourceAdapter(source)
	if err != nil {
		return err
	}
	name, err := targetName(cmd, source)
	if err != nil {
		return err
	}

	r.logger.Info("starting convert", "source", source, "playlist", name)
	r.writePlain("Converting %s into new playlist %q...\n\n", source, name)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.printProgress(progressCh)

	report, err := r.engine.Convert(ctx, progressCh, adapter, name)
	close(progressCh)

	if err != nil {
		return err
	}
	return r.printReport(report, cmd.Bool("json"))
}
