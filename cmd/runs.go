package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"syncra/internal/formatter"
	"syncra/internal/shared"
)

// RunsList lists recorded sync runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	if r.runs == nil {
		return fmt.Errorf("%w: run history database not available", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{
		"mode":  cmd.String("mode"),
		"limit": int(cmd.Int("limit")),
	}

	runs, err := r.runs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		reports := make([]any, 0, len(runs))
		for _, run := range runs {
			reports = append(reports, run.Report())
		}
		return r.writeJSON(reports, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}
	for _, run := range runs {
		r.writePlain("%s\n", formatter.RunLine(run))
	}
	return nil
}

// RunsShow prints one run's full report.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	if r.runs == nil {
		return fmt.Errorf("%w: run history database not available", shared.ErrServiceUnavailable)
	}

	runID := cmd.StringArg("run-id")
	run, err := r.runs.GetByRunID(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	report := run.Report()
	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	return r.printReport(&report, false)
}
