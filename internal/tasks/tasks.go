package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"syncra/internal/diffs"
	"syncra/internal/models"
	"syncra/internal/shared"
	"syncra/internal/sources"
)

// Library defines the target-side operations the engine needs. *plex.Client
// satisfies it; tests substitute an in-memory double.
type Library interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.LibraryTrack, error)
	FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, playlistID string) error
	ApplyEdit(ctx context.Context, playlistID string, op models.EditOp) error
}

// Resolver maps one source reference to a library track. Resolution failures
// are carried in the result, never as an error.
type Resolver interface {
	Resolve(ctx context.Context, ref models.RawTrackRef) models.ResolvedTrack
}

// RunStore persists completed run reports.
type RunStore interface {
	Save(report *models.SyncReport) error
}

// Engine orchestrates sync operations against one library.
type Engine struct {
	library  Library
	resolver Resolver
	runs     RunStore
	cfg      shared.SyncConfig
	logger   *log.Logger
}

// NewEngine creates an engine. runs may be nil; reports are then not
// persisted.
func NewEngine(library Library, resolver Resolver, runs RunStore, cfg shared.SyncConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		library:  library,
		resolver: resolver,
		runs:     runs,
		cfg:      cfg,
		logger:   shared.WithLogger(logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Import syncs a source playlist into the library playlist with the given
// name, creating it when absent. The existing playlist is edited toward the
// source order; a second import of an unchanged source plans zero edits.
func (e *Engine) Import(ctx context.Context, progress chan<- ProgressUpdate, src sources.Adapter, name string) (*models.SyncReport, error) {
	if err := e.ready(src); err != nil {
		return nil, err
	}

	report := e.newReport("import", src.Name())
	report.PlaylistName = name

	desired, err := e.resolveSource(ctx, progress, src, report)
	if err != nil {
		return e.finish(report), err
	}

	e.sendProgress(progress, fetchTargetUpdate(name))
	pl, err := e.library.FindPlaylistByName(ctx, name)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		e.sendProgress(progress, createPlaylistUpdate(name))
		pl, err = e.library.CreatePlaylist(ctx, name)
	}
	if err != nil {
		return e.finish(report), fmt.Errorf("failed to prepare target playlist: %w", err)
	}
	report.PlaylistID = pl.ID
	report.PlaylistName = pl.Name

	script := diffs.Diff(pl.TrackIDs, desired)
	report.PlannedEdits = len(script)
	e.sendProgress(progress, computeDiffUpdate(len(script)))

	e.applyEdits(ctx, progress, pl.ID, script, report)
	return e.finish(report), nil
}

// Convert copies a source playlist into a brand new library playlist. Unlike
// Import it never touches an existing playlist of the same name.
func (e *Engine) Convert(ctx context.Context, progress chan<- ProgressUpdate, src sources.Adapter, name string) (*models.SyncReport, error) {
	if err := e.ready(src); err != nil {
		return nil, err
	}

	report := e.newReport("convert", src.Name())
	report.PlaylistName = name

	desired, err := e.resolveSource(ctx, progress, src, report)
	if err != nil {
		return e.finish(report), err
	}

	e.sendProgress(progress, createPlaylistUpdate(name))
	pl, err := e.library.CreatePlaylist(ctx, name)
	if err != nil {
		return e.finish(report), fmt.Errorf("failed to create playlist: %w", err)
	}
	report.PlaylistID = pl.ID
	report.PlaylistName = pl.Name

	script := diffs.Diff(nil, desired)
	report.PlannedEdits = len(script)
	e.sendProgress(progress, computeDiffUpdate(len(script)))

	e.applyEdits(ctx, progress, pl.ID, script, report)
	return e.finish(report), nil
}

// Export writes a library playlist to w in m3u form.
func (e *Engine) Export(ctx context.Context, progress chan<- ProgressUpdate, nameOrID string, w io.Writer) (*models.SyncReport, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library client not initialized", shared.ErrServiceUnavailable)
	}

	report := e.newReport("export", "")

	pl, err := e.findPlaylist(ctx, nameOrID)
	if err != nil {
		return e.finish(report), err
	}
	report.PlaylistID = pl.ID
	report.PlaylistName = pl.Name

	e.sendProgress(progress, exportPlaylistUpdate(pl.Name, len(pl.TrackIDs)))
	tracks, err := e.library.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		return e.finish(report), fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}
	report.TotalRefs = len(tracks)
	report.ResolvedCount = len(tracks)

	if err := sources.WriteM3U(w, tracks); err != nil {
		return e.finish(report), err
	}
	return e.finish(report), nil
}

// Delete removes a library playlist by name or ID.
func (e *Engine) Delete(ctx context.Context, progress chan<- ProgressUpdate, nameOrID string) (*models.SyncReport, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library client not initialized", shared.ErrServiceUnavailable)
	}

	report := e.newReport("delete", "")

	pl, err := e.findPlaylist(ctx, nameOrID)
	if err != nil {
		return e.finish(report), err
	}
	report.PlaylistID = pl.ID
	report.PlaylistName = pl.Name

	e.sendProgress(progress, deletePlaylistUpdate(pl.Name))
	if err := e.library.DeletePlaylist(ctx, pl.ID); err != nil {
		return e.finish(report), fmt.Errorf("failed to delete playlist: %w", err)
	}
	return e.finish(report), nil
}

func (e *Engine) ready(src sources.Adapter) error {
	if e.library == nil {
		return fmt.Errorf("%w: library client not initialized", shared.ErrServiceUnavailable)
	}
	if e.resolver == nil {
		return fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}
	if src == nil {
		return fmt.Errorf("%w: source adapter not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// resolveSource reads the source playlist and resolves its refs, filling the
// resolution half of the report. The returned IDs preserve source order.
func (e *Engine) resolveSource(ctx context.Context, progress chan<- ProgressUpdate, src sources.Adapter, report *models.SyncReport) ([]string, error) {
	e.sendProgress(progress, fetchSourceUpdate(src.Name()))
	refs, err := src.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source playlist: %w", err)
	}
	report.TotalRefs = len(refs)
	e.sendProgress(progress, sourceLoadedUpdate(src.Name(), len(refs)))

	resolved := e.resolveAll(ctx, progress, refs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	desired := make([]string, 0, len(resolved))
	for _, r := range resolved {
		if r.Resolved {
			report.ResolvedCount++
			desired = append(desired, r.TrackID)
		} else {
			report.UnresolvedCount++
			report.Unresolved = append(report.Unresolved, r)
		}
	}
	e.sendProgress(progress, resolveDoneUpdate(report.ResolvedCount, report.TotalRefs))
	return desired, nil
}

// applyEdits runs the script sequentially. Failed ops are recorded and the
// remaining ops still run, except after an auth failure where every further
// op would fail the same way.
func (e *Engine) applyEdits(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, script models.EditScript, report *models.SyncReport) {
	for i, op := range script {
		if err := ctx.Err(); err != nil {
			report.FailedEdits = append(report.FailedEdits, models.FailedEdit{Op: op, Error: err.Error()})
			return
		}

		e.sendProgress(progress, applyEditUpdate(i+1, len(script), op))
		if err := e.library.ApplyEdit(ctx, playlistID, op); err != nil {
			report.FailedEdits = append(report.FailedEdits, models.FailedEdit{Op: op, Error: err.Error()})
			if errors.Is(err, shared.ErrUnauthorized) {
				e.logger.Error("aborting remaining edits", "playlist", playlistID, "error", err)
				return
			}
			e.logger.Warn("edit failed", "playlist", playlistID, "op", op.String(), "error", err)
			continue
		}
		report.AppliedEdits++
	}
}

// findPlaylist resolves the argument as a rating key when it is numeric,
// falling back to a name lookup.
func (e *Engine) findPlaylist(ctx context.Context, nameOrID string) (*models.Playlist, error) {
	if looksLikeID(nameOrID) {
		pl, err := e.library.GetPlaylist(ctx, nameOrID)
		if err == nil {
			return pl, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return e.library.FindPlaylistByName(ctx, nameOrID)
}

func looksLikeID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (e *Engine) newReport(mode, source string) *models.SyncReport {
	return &models.SyncReport{
		RunID:     shared.GenerateID(),
		Mode:      mode,
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// finish stamps the report and persists it. Persistence is best effort; a
// storage failure never fails the run.
func (e *Engine) finish(report *models.SyncReport) *models.SyncReport {
	report.FinishedAt = time.Now().UTC()
	if e.runs != nil {
		if err := e.runs.Save(report); err != nil {
			e.logger.Warn("failed to persist run", "run_id", report.RunID, "error", err)
		}
	}
	return report
}
