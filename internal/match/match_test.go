package match

import (
	"context"
	"errors"
	"testing"

	"syncra/internal/models"
	"syncra/internal/normalize"
)

type fakeSearcher struct {
	results []models.LibraryTrack
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, artist, title string) ([]models.LibraryTrack, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newMatcher(t *testing.T, s Searcher) *Matcher {
	t.Helper()
	return New(s, normalize.MustNew(normalize.Options{}), DefaultConfig())
}

func TestResolve(t *testing.T) {
	tc := []struct {
		name         string
		ref          models.RawTrackRef
		searcher     *fakeSearcher
		wantResolved bool
		wantTrackID  string
		wantReason   models.UnresolvedReason
	}{
		{
			name: "exact match resolves",
			ref:  models.RawTrackRef{Artist: "Queen", Title: "Bohemian Rhapsody", DurationSec: 355},
			searcher: &fakeSearcher{results: []models.LibraryTrack{
				{ID: "lib1", Artist: "Queen", Title: "Bohemian Rhapsody", DurationSec: 354},
			}},
			wantResolved: true,
			wantTrackID:  "lib1",
		},
		{
			name: "feat variant resolves via normalization",
			ref:  models.RawTrackRef{Artist: "B.o.B", Title: "Airplanes (feat. Hayley Williams)", DurationSec: 180},
			searcher: &fakeSearcher{results: []models.LibraryTrack{
				{ID: "lib1", Artist: "B.o.B", Title: "Airplanes", DurationSec: 181},
			}},
			wantResolved: true,
			wantTrackID:  "lib1",
		},
		{
			name: "fuzzy title with matching duration resolves",
			ref:  models.RawTrackRef{Artist: "Nirvana", Title: "Smells Like Teen Spirit", DurationSec: 301},
			searcher: &fakeSearcher{results: []models.LibraryTrack{
				{ID: "lib1", Artist: "Nirvana", Title: "Smells Like Teen Spirits", DurationSec: 301},
			}},
			wantResolved: true,
			wantTrackID:  "lib1",
		},
		{
			name: "no candidates",
			ref:  models.RawTrackRef{Artist: "Queen", Title: "Bohemian Rhapsody"},
			searcher: &fakeSearcher{results: []models.LibraryTrack{
				{ID: "lib1", Artist: "Someone Else", Title: "Different Song"},
			}},
			wantResolved: false,
			wantReason:   models.UnresolvedNoMatch,
		},
		{
			name:         "empty search results",
			ref:          models.RawTrackRef{Artist: "Queen", Title: "Bohemian Rhapsody"},
			searcher:     &fakeSearcher{},
			wantResolved: false,
			wantReason:   models.UnresolvedNoMatch,
		},
		{
			name: "duplicate exact matches are ambiguous",
			ref:  models.RawTrackRef{Artist: "Queen", Title: "Bohemian Rhapsody"},
			searcher: &fakeSearcher{results: []models.LibraryTrack{
				{ID: "lib1", Artist: "Queen", Title: "Bohemian Rhapsody"},
				{ID: "lib2", Artist: "Queen", Title: "Bohemian Rhapsody"},
			}},
			wantResolved: false,
			wantReason:   models.UnresolvedAmbiguous,
		},
		{
			name:         "search failure is contained",
			ref:          models.RawTrackRef{Artist: "Queen", Title: "Bohemian Rhapsody"},
			searcher:     &fakeSearcher{err: errors.New("connection refused")},
			wantResolved: false,
			wantReason:   models.UnresolvedSearch,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatcher(t, tt.searcher)
			got := m.Resolve(context.Background(), tt.ref)

			if got.Resolved != tt.wantResolved {
				t.Fatalf("Resolved = %v, want %v (reason %q)", got.Resolved, tt.wantResolved, got.Reason)
			}
			if tt.wantResolved && got.TrackID != tt.wantTrackID {
				t.Errorf("TrackID = %q, want %q", got.TrackID, tt.wantTrackID)
			}
			if !tt.wantResolved && got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Ref.Title != tt.ref.Title {
				t.Errorf("resolved track should carry the original ref")
			}
		})
	}
}

func TestResolveOnePerRef(t *testing.T) {
	searcher := &fakeSearcher{results: []models.LibraryTrack{
		{ID: "lib1", Artist: "Queen", Title: "Bohemian Rhapsody"},
	}}
	m := newMatcher(t, searcher)

	refs := []models.RawTrackRef{
		{Artist: "Queen", Title: "Bohemian Rhapsody"},
		{Artist: "Queen", Title: "Bohemian Rhapsody"},
		{Artist: "Unknown", Title: "Unknown"},
	}

	for _, ref := range refs {
		got := m.Resolve(context.Background(), ref)
		if got.Ref.Artist != ref.Artist {
			t.Errorf("expected one result per ref, got mismatched ref %q", got.Ref.Artist)
		}
	}
	if searcher.calls != len(refs) {
		t.Errorf("expected %d searches, got %d", len(refs), searcher.calls)
	}
}

func TestCandidatesOrdering(t *testing.T) {
	t.Run("exact beats fuzzy", func(t *testing.T) {
		searcher := &fakeSearcher{results: []models.LibraryTrack{
			{ID: "fuzzy", Artist: "Nirvana", Title: "Smells Like Teen Spirits", DurationSec: 301},
			{ID: "exact", Artist: "Nirvana", Title: "Smells Like Teen Spirit", DurationSec: 301},
		}}
		m := newMatcher(t, searcher)

		candidates, err := m.Candidates(context.Background(), models.RawTrackRef{
			Artist: "Nirvana", Title: "Smells Like Teen Spirit", DurationSec: 301,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].TrackID != "exact" {
			t.Errorf("expected exact match first, got %q", candidates[0].TrackID)
		}
		if candidates[0].Score <= candidates[1].Score {
			t.Errorf("expected descending scores: %f then %f", candidates[0].Score, candidates[1].Score)
		}
	})

	t.Run("duration proximity breaks score ties", func(t *testing.T) {
		searcher := &fakeSearcher{results: []models.LibraryTrack{
			{ID: "far", Artist: "Queen", Title: "Bohemian Rhapsody", DurationSec: 200},
			{ID: "near", Artist: "Queen", Title: "Bohemian Rhapsody", DurationSec: 354},
		}}
		m := newMatcher(t, searcher)

		candidates, err := m.Candidates(context.Background(), models.RawTrackRef{
			Artist: "Queen", Title: "Bohemian Rhapsody", DurationSec: 355,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].TrackID != "near" {
			t.Errorf("expected duration-closer candidate first, got %q", candidates[0].TrackID)
		}
	})

	t.Run("library order breaks remaining ties", func(t *testing.T) {
		searcher := &fakeSearcher{results: []models.LibraryTrack{
			{ID: "first", Artist: "Queen", Title: "Bohemian Rhapsody"},
			{ID: "second", Artist: "Queen", Title: "Bohemian Rhapsody"},
		}}
		m := newMatcher(t, searcher)

		for i := 0; i < 3; i++ {
			candidates, err := m.Candidates(context.Background(), models.RawTrackRef{
				Artist: "Queen", Title: "Bohemian Rhapsody",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if candidates[0].TrackID != "first" || candidates[1].TrackID != "second" {
				t.Fatalf("ordering not deterministic on run %d: %q, %q", i, candidates[0].TrackID, candidates[1].TrackID)
			}
		}
	})
}

func TestScoreBounds(t *testing.T) {
	searcher := &fakeSearcher{results: []models.LibraryTrack{
		{ID: "lib1", Artist: "Queen", Title: "Bohemian Rhapsody", Album: "A Night at the Opera", DurationSec: 355},
	}}
	m := newMatcher(t, searcher)

	// Exact title, artist, album, and duration all agree; score must clamp at 1.0
	candidates, err := m.Candidates(context.Background(), models.RawTrackRef{
		Artist: "Queen", Title: "Bohemian Rhapsody", Album: "A Night at the Opera", DurationSec: 355,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Score != 1.0 {
		t.Errorf("expected score clamped to 1.0, got %f", candidates[0].Score)
	}

	wantReasons := map[models.MatchReason]bool{
		models.ReasonExactTitle:    true,
		models.ReasonExactArtist:   true,
		models.ReasonDurationMatch: true,
		models.ReasonAlbumMatch:    true,
	}
	for _, r := range candidates[0].Reasons {
		if !wantReasons[r] {
			t.Errorf("unexpected reason %q", r)
		}
		delete(wantReasons, r)
	}
	for r := range wantReasons {
		t.Errorf("missing reason %q", r)
	}
}

func TestConfigSanitize(t *testing.T) {
	m := New(&fakeSearcher{}, normalize.MustNew(normalize.Options{}), Config{})
	if m.cfg.AcceptThreshold != DefaultConfig().AcceptThreshold {
		t.Errorf("zero config should fall back to defaults, got %f", m.cfg.AcceptThreshold)
	}
}
