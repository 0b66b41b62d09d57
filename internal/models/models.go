// package models defines the data model for the playlist reconciliation engine
package models

import (
	"fmt"
	"time"
)

// SourceKind identifies where a track reference came from.
type SourceKind string

const (
	SourceM3U     SourceKind = "m3u"
	SourceSpotify SourceKind = "spotify"
	SourceDeezer  SourceKind = "deezer"
	SourceTidal   SourceKind = "tidal"
	SourcePlex    SourceKind = "plex"
)

// RawTrackRef is a loosely-specified track reference as it arrives from a
// playlist source. One ref per playlist entry, in source order.
type RawTrackRef struct {
	Source      SourceKind `json:"source"`
	Artist      string     `json:"artist"`
	Title       string     `json:"title"`
	Album       string     `json:"album,omitempty"`
	DurationSec int        `json:"duration_sec,omitempty"`
	Path        string     `json:"path,omitempty"`
}

// NormalizedKey holds the canonical comparison form of a track's metadata.
// Keys are used only for matching, never displayed.
type NormalizedKey struct {
	Artist string
	Title  string
	Album  string
}

// MatchReason labels why a candidate scored the way it did.
type MatchReason string

const (
	ReasonExactTitle    MatchReason = "exact-title"
	ReasonExactArtist   MatchReason = "exact-artist"
	ReasonFuzzyTitle    MatchReason = "fuzzy-title"
	ReasonDurationMatch MatchReason = "duration-match"
	ReasonAlbumMatch    MatchReason = "album-match"
)

// CandidateMatch is a scored library track considered for a single ref.
type CandidateMatch struct {
	TrackID       string        `json:"track_id"`
	Score         float64       `json:"score"`
	Reasons       []MatchReason `json:"reasons"`
	DurationDelta int           `json:"duration_delta"` // seconds, negative when unknown on either side
	LibraryOrder  int           `json:"library_order"`
}

// UnresolvedReason explains why a ref could not be resolved.
type UnresolvedReason string

const (
	UnresolvedNoMatch   UnresolvedReason = "no-confident-match"
	UnresolvedAmbiguous UnresolvedReason = "ambiguous"
	UnresolvedSearch    UnresolvedReason = "search-failed"
)

// ResolvedTrack is the outcome of resolving one RawTrackRef.
// Exactly one is produced per ref; TrackID is set iff Resolved is true.
type ResolvedTrack struct {
	Ref      RawTrackRef      `json:"ref"`
	Resolved bool             `json:"resolved"`
	TrackID  string           `json:"track_id,omitempty"`
	Score    float64          `json:"score,omitempty"`
	Reason   UnresolvedReason `json:"reason,omitempty"`
}

// LibraryTrack is a concrete track in the target library.
type LibraryTrack struct {
	ID          string `json:"id"`
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	Album       string `json:"album,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
	Path        string `json:"path,omitempty"`
}

// Playlist is an ordered target playlist. Duplicate track IDs are allowed.
type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"track_ids"`
}

// EditKind enumerates playlist edit operations.
type EditKind int

const (
	EditInsert EditKind = iota
	EditRemove
	EditMove
)

func (k EditKind) String() string {
	switch k {
	case EditInsert:
		return "insert"
	case EditRemove:
		return "remove"
	case EditMove:
		return "move"
	default:
		return ""
	}
}

// EditOp is a single playlist mutation. Positions are interpreted against the
// playlist state at the moment the op executes, not the original state.
type EditOp struct {
	Kind    EditKind `json:"kind"`
	TrackID string   `json:"track_id,omitempty"` // Insert only
	Pos     int      `json:"pos"`                // Insert/Remove position
	From    int      `json:"from,omitempty"`     // Move only
	To      int      `json:"to,omitempty"`       // Move only
}

func (op EditOp) String() string {
	switch op.Kind {
	case EditInsert:
		return fmt.Sprintf("insert %s @ %d", op.TrackID, op.Pos)
	case EditRemove:
		return fmt.Sprintf("remove @ %d", op.Pos)
	case EditMove:
		return fmt.Sprintf("move %d -> %d", op.From, op.To)
	default:
		return "unknown"
	}
}

// EditScript is an ordered sequence of edits. Scripts are transient: computed,
// applied once, then discarded.
type EditScript []EditOp

// FailedEdit records an edit the target rejected during apply.
type FailedEdit struct {
	Op    EditOp `json:"op"`
	Error string `json:"error"`
}

// SyncReport is the sole externally observable result of a sync run.
// It is immutable once the run completes.
type SyncReport struct {
	RunID           string          `json:"run_id"`
	Mode            string          `json:"mode"`
	Source          string          `json:"source,omitempty"`
	PlaylistID      string          `json:"playlist_id,omitempty"`
	PlaylistName    string          `json:"playlist_name,omitempty"`
	TotalRefs       int             `json:"total_refs"`
	ResolvedCount   int             `json:"resolved_count"`
	UnresolvedCount int             `json:"unresolved_count"`
	Unresolved      []ResolvedTrack `json:"unresolved,omitempty"`
	PlannedEdits    int             `json:"planned_edits"`
	AppliedEdits    int             `json:"applied_edits"`
	FailedEdits     []FailedEdit    `json:"failed_edits,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
}

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
