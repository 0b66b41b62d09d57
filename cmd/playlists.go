package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"syncra/internal/formatter"
	"syncra/internal/shared"
	"syncra/internal/tasks"
)

// PlaylistsList lists the library's audio playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if r.library == nil {
		return fmt.Errorf("%w: library client not initialized", shared.ErrServiceUnavailable)
	}

	playlists, err := r.library.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	for _, pl := range playlists {
		r.writePlain("%s\n", formatter.PlaylistLine(pl))
	}
	r.writePlain("\n%d playlists\n", len(playlists))
	return nil
}

// PlaylistsDelete removes a library playlist by name or ID.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("playlist")

	report, err := r.engine.Delete(ctx, nil, target)
	if err != nil {
		return err
	}

	r.writePlain("✓ Deleted playlist %q (ID %s)\n", report.PlaylistName, report.PlaylistID)
	return nil
}

// PlaylistsExport writes one library playlist as m3u to a file or stdout.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("playlist")
	outputPath := cmd.String("output")

	out := r.output
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	report, err := r.engine.Export(ctx, nil, target, out)
	if err != nil {
		return err
	}

	if outputPath != "" {
		r.writePlain("✓ Exported %q (%d tracks) to %s\n", report.PlaylistName, report.TotalRefs, outputPath)
	}
	return nil
}

// PlaylistsExportAll exports several playlists (or the whole library) to m3u
// files in one directory.
func (r *Runner) PlaylistsExportAll(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.BulkExportOpts{
		OutputDir: cmd.String("dir"),
		Workers:   int(cmd.Int("workers")),
		RateLimit: cmd.Float("rate"),
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.printProgress(progressCh)

	result, err := r.engine.BulkExport(ctx, progressCh, cmd.StringSlice("id"), opts)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	return nil
}
