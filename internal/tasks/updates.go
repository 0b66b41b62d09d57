package tasks

import (
	"fmt"

	"syncra/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	ResolveTracks
	FetchTarget
	ComputeDiff
	ApplyEdits
	CreatePlaylist
	ExportPlaylist
	DeletePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case ResolveTracks:
		return "resolve_tracks"
	case FetchTarget:
		return "fetch_target"
	case ComputeDiff:
		return "compute_diff"
	case ApplyEdits:
		return "apply_edits"
	case CreatePlaylist:
		return "create_playlist"
	case ExportPlaylist:
		return "export_playlist"
	case DeletePlaylist:
		return "delete_playlist"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading source playlist (%s)...", name),
	}
}

func sourceLoadedUpdate(name string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d tracks from %s", total, name),
	}
}

func resolveTrackUpdate(step, total int, ref models.RawTrackRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, ref.Artist, ref.Title),
	}
}

func resolveDoneUpdate(resolved, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Resolved %d of %d tracks", resolved, total),
	}
}

func fetchTargetUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching target playlist %q...", name),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func computeDiffUpdate(planned int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeDiff,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Planned %d edits", planned),
	}
}

func applyEditUpdate(step, total int, op models.EditOp) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyEdits,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, op.String()),
		Data:    op,
	}
}

func exportPlaylistUpdate(name string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exporting %q (%d tracks)...", name, total),
	}
}

func exportCompletedUpdate(step, total int, name, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, file),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func deletePlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeletePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Deleting playlist %q...", name),
	}
}
