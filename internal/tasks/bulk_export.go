package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"syncra/internal/models"
	"syncra/internal/shared"
	"syncra/internal/sources"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	OutputDir string  // Base output directory (default: playlist_export_{epoch})
	Workers   int     // Concurrent workers (default: 5, max: 10)
	RateLimit float64 // Requests per second (default: 5)
}

// PlaylistExportResult records one playlist's export outcome.
type PlaylistExportResult struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name"`
	File         string `json:"file,omitempty"`
	TrackCount   int    `json:"track_count"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"manifest_path,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

// BulkExport writes several library playlists to m3u files concurrently with
// rate limiting. An empty ids slice exports every non-smart playlist on the
// server. Partial failures are recorded per playlist; the run itself only
// fails when nothing could be listed or written at all.
func (e *Engine) BulkExport(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playlist_export_%d", time.Now().Unix())
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRate
	}

	targets, err := e.exportTargets(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(targets),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(targets)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Playlist, len(targets))
	for _, pl := range targets {
		jobs <- pl
	}
	close(jobs)

	results := make(chan PlaylistExportResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pl := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results <- PlaylistExportResult{
						PlaylistID:   pl.ID,
						PlaylistName: pl.Name,
						Error:        err.Error(),
					}
					continue
				}
				results <- e.exportSinglePlaylist(ctx, pl, opts.OutputDir)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(progress, exportCompletedUpdate(completed, len(targets), res.PlaylistName, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(progress, exportFailedUpdate(completed, len(targets), res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportTargets resolves the requested IDs, or lists everything when none
// were given.
func (e *Engine) exportTargets(ctx context.Context, ids []string) ([]models.Playlist, error) {
	if len(ids) == 0 {
		playlists, err := e.library.Playlists(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
		return playlists, nil
	}

	targets := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		pl, err := e.findPlaylist(ctx, id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *pl)
	}
	return targets, nil
}

func (e *Engine) exportSinglePlaylist(ctx context.Context, pl models.Playlist, outputDir string) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   pl.ID,
		PlaylistName: pl.Name,
	}

	tracks, err := e.library.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch tracks: %v", err)
		return result
	}
	result.TrackCount = len(tracks)

	path := filepath.Join(outputDir, exportFileName(pl))
	f, err := os.Create(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create file: %v", err)
		return result
	}
	defer f.Close()

	if err := sources.WriteM3U(f, tracks); err != nil {
		result.Error = fmt.Sprintf("failed to write playlist: %v", err)
		return result
	}

	result.File = path
	result.Success = true
	return result
}

// exportFileName derives a filesystem-safe m3u name from the playlist name,
// falling back to the ID.
func exportFileName(pl models.Playlist) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(pl.Name))

	if name == "" {
		name = pl.ID
	}
	return name + ".m3u"
}
