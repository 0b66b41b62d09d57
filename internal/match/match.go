// package match resolves loosely-specified track references against a
// concrete library using confidence-scored fuzzy matching.
//
// Resolution is tolerant of noisy metadata but conservative: a ref is only
// resolved when the best candidate clears the acceptance threshold and beats
// the runner-up by the separation margin. Everything else stays unresolved
// rather than guessing.
package match

import (
	"context"
	"sort"

	"github.com/xrash/smetrics"

	"syncra/internal/models"
	"syncra/internal/normalize"
)

// Searcher is the library search capability the matcher queries.
// Implementations return candidates in library order.
type Searcher interface {
	Search(ctx context.Context, artist, title string) ([]models.LibraryTrack, error)
}

// Config holds matcher thresholds. Defaults are tunable starting points,
// not requirements.
type Config struct {
	AcceptThreshold      float64 // minimum top score to resolve
	SeparationMargin     float64 // minimum gap between top and runner-up
	FuzzyThreshold       float64 // minimum title similarity for a fuzzy match
	DurationToleranceSec int     // max duration delta treated as agreement
	DurationBonus        float64 // score bonus for duration agreement
	AlbumBonus           float64 // score bonus for album agreement
}

// DefaultConfig returns the default matcher thresholds.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:      0.72,
		SeparationMargin:     0.05,
		FuzzyThreshold:       0.60,
		DurationToleranceSec: 3,
		DurationBonus:        0.04,
		AlbumBonus:           0.02,
	}
}

// sanitize clamps nonsense values back to defaults so a partially filled
// config section cannot disable matching entirely.
func (c Config) sanitize() Config {
	d := DefaultConfig()
	if c.AcceptThreshold <= 0 || c.AcceptThreshold > 1 {
		c.AcceptThreshold = d.AcceptThreshold
	}
	if c.SeparationMargin < 0 || c.SeparationMargin > 1 {
		c.SeparationMargin = d.SeparationMargin
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold >= 1 {
		c.FuzzyThreshold = d.FuzzyThreshold
	}
	if c.DurationToleranceSec <= 0 {
		c.DurationToleranceSec = d.DurationToleranceSec
	}
	if c.DurationBonus <= 0 {
		c.DurationBonus = d.DurationBonus
	}
	if c.AlbumBonus <= 0 {
		c.AlbumBonus = d.AlbumBonus
	}
	return c
}

// Matcher scores library candidates for track references.
type Matcher struct {
	searcher Searcher
	norm     *normalize.Normalizer
	cfg      Config
}

// New creates a Matcher over the given search capability.
func New(searcher Searcher, norm *normalize.Normalizer, cfg Config) *Matcher {
	return &Matcher{searcher: searcher, norm: norm, cfg: cfg.sanitize()}
}

// Candidates searches the library for ref and returns scored candidates in
// deterministic order: score descending, then duration proximity, then
// library order.
func (m *Matcher) Candidates(ctx context.Context, ref models.RawTrackRef) ([]models.CandidateMatch, error) {
	results, err := m.searcher.Search(ctx, ref.Artist, ref.Title)
	if err != nil {
		return nil, err
	}

	key := m.norm.Key(ref)

	var candidates []models.CandidateMatch
	for i, lib := range results {
		if c, ok := m.score(key, ref, lib, i); ok {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if da, db := durationRank(a), durationRank(b); da != db {
			return da < db
		}
		return a.LibraryOrder < b.LibraryOrder
	})

	return candidates, nil
}

// Resolve produces exactly one ResolvedTrack for ref. Search failures are
// contained: they mark the ref unresolved instead of propagating.
func (m *Matcher) Resolve(ctx context.Context, ref models.RawTrackRef) models.ResolvedTrack {
	candidates, err := m.Candidates(ctx, ref)
	if err != nil {
		return models.ResolvedTrack{Ref: ref, Reason: models.UnresolvedSearch}
	}

	if len(candidates) == 0 {
		return models.ResolvedTrack{Ref: ref, Reason: models.UnresolvedNoMatch}
	}

	top := candidates[0]
	if top.Score < m.cfg.AcceptThreshold {
		return models.ResolvedTrack{Ref: ref, Reason: models.UnresolvedNoMatch}
	}

	if len(candidates) > 1 && top.Score-candidates[1].Score < m.cfg.SeparationMargin {
		return models.ResolvedTrack{Ref: ref, Reason: models.UnresolvedAmbiguous}
	}

	return models.ResolvedTrack{Ref: ref, Resolved: true, TrackID: top.TrackID, Score: top.Score}
}

// score computes the confidence score for a single library track.
// Returns false when the track does not qualify as a candidate at all.
func (m *Matcher) score(key models.NormalizedKey, ref models.RawTrackRef, lib models.LibraryTrack, order int) (models.CandidateMatch, bool) {
	libKey := m.norm.Key(models.RawTrackRef{Artist: lib.Artist, Title: lib.Title, Album: lib.Album})

	var score float64
	var reasons []models.MatchReason

	switch {
	case key.Title == libKey.Title && key.Artist == libKey.Artist && key.Title != "":
		score = 1.0
		reasons = append(reasons, models.ReasonExactTitle, models.ReasonExactArtist)
	case key.Artist == libKey.Artist && key.Artist != "":
		sim := smetrics.JaroWinkler(key.Title, libKey.Title, 0.7, 4)
		if sim < m.cfg.FuzzyThreshold {
			return models.CandidateMatch{}, false
		}
		// Fuzzy matches land in (0.6, 0.95], scaled by similarity
		score = 0.6 + (sim-m.cfg.FuzzyThreshold)/(1-m.cfg.FuzzyThreshold)*0.35
		reasons = append(reasons, models.ReasonExactArtist, models.ReasonFuzzyTitle)
	default:
		return models.CandidateMatch{}, false
	}

	delta := -1
	if ref.DurationSec > 0 && lib.DurationSec > 0 {
		delta = ref.DurationSec - lib.DurationSec
		if delta < 0 {
			delta = -delta
		}
		if delta <= m.cfg.DurationToleranceSec {
			score += m.cfg.DurationBonus
			reasons = append(reasons, models.ReasonDurationMatch)
		}
	}

	if key.Album != "" && key.Album == libKey.Album {
		score += m.cfg.AlbumBonus
		reasons = append(reasons, models.ReasonAlbumMatch)
	}

	if score > 1.0 {
		score = 1.0
	}

	return models.CandidateMatch{
		TrackID:       lib.ID,
		Score:         score,
		Reasons:       reasons,
		DurationDelta: delta,
		LibraryOrder:  order,
	}, true
}

// durationRank orders candidates by duration proximity; unknown deltas sort last.
func durationRank(c models.CandidateMatch) int {
	if c.DurationDelta < 0 {
		return 1 << 30
	}
	return c.DurationDelta
}
