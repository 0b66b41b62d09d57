package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"syncra/internal/formatter"
	"syncra/internal/models"
	"syncra/internal/repositories"
	"syncra/internal/shared"
	"syncra/internal/sources"
	"syncra/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	library    tasks.Library
	engine     *tasks.Engine
	runs       *repositories.RunRepository
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Library    tasks.Library
	Engine     *tasks.Engine
	Runs       *repositories.RunRepository
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		library:    opts.Library,
		engine:     opts.Engine,
		runs:       opts.Runs,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		importCommand, convertCommand, exportCommand, playlistsCommand, runsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// sourceAdapter builds the adapter for a source argument: a streaming
// playlist URL or an m3u file path.
func (r *Runner) sourceAdapter(source string) (sources.Adapter, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return sources.ForURL(source, r.config, r.httpClient)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: source %q is neither a playlist URL nor a readable file", shared.ErrInvalidArgument, source)
	}
	return sources.NewM3UAdapter(source), nil
}

// targetName returns the playlist name to sync into: the --name flag, or the
// source file's base name when the flag is empty.
func targetName(cmd *cli.Command, source string) (string, error) {
	if name := cmd.String("name"); name != "" {
		return name, nil
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "", fmt.Errorf("%w: --name is required for URL sources", shared.ErrMissingArgument)
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// printProgress drains a progress channel to the output writer.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.FetchSource:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.ResolveTracks, tasks.ApplyEdits:
			r.writePlain("   %s\n", update.Message)
		case tasks.FetchTarget, tasks.ComputeDiff:
			r.writePlain("🔍 %s\n", update.Message)
		case tasks.CreatePlaylist:
			r.writePlain("📝 %s\n", update.Message)
		default:
			r.writePlain("%s\n", update.Message)
		}
	}
}

// printReport renders a completed run report as JSON or styled text.
func (r *Runner) printReport(report *models.SyncReport, asJSON bool) error {
	if asJSON {
		return r.writeJSON(report, true)
	}

	r.writePlain("\n%s", formatter.Summary(report))
	if out := formatter.UnresolvedList(report); out != "" {
		r.writePlain("\n%s", out)
	}
	if out := formatter.FailedEditList(report); out != "" {
		r.writePlain("\n%s", out)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
