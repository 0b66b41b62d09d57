// package normalize canonicalizes noisy track metadata for comparison.
//
// Normalization is pure and deterministic: the same input always yields the
// same key. Keys are only used for matching and never shown to users.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"syncra/internal/models"
)

// Noise suffixes commonly appended to titles by streaming catalogs and rippers
var defaultNoisePatterns = []string{
	`(?i)\s*\((remaster(ed)?|deluxe|mono|stereo|live|acoustic|single version|album version|radio edit|bonus track|re-?recorded)[^)]*\)`,
	`(?i)\s*\[(remaster(ed)?|deluxe|mono|stereo|live|acoustic|single version|album version|radio edit|bonus track|re-?recorded)[^\]]*\]`,
	`(?i)\s*\((official\s+(music\s+)?video|official\s+audio|official\s+lyric\s+video|lyrics?|visual(izer)?|audio|hd|hq|4k|explicit|clean)\)`,
	`(?i)\s*\[(official\s+(music\s+)?video|official\s+audio|official\s+lyric\s+video|lyrics?|visual(izer)?|audio|hd|hq|4k|explicit|clean)\]`,
	`(?i)\s*-\s*(remaster(ed)?( \d{4})?|\d{4} remaster(ed)?)\s*$`,
}

// Featuring credits, parenthesized or trailing
var featuringPattern = regexp.MustCompile(`(?i)\s*[(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^)\]]*[)\]]?\s*$`)

// Pattern for "Artist - Title" single-string entries (m3u EXTINF display names)
var artistTitleSeparator = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

var punctuation = regexp.MustCompile(`[',.!?"“”‘’:;&/\\]`)

var whitespace = regexp.MustCompile(`\s+`)

// Options configures a Normalizer. Zero value means defaults.
type Options struct {
	// NoisePatterns replaces the default noise pattern set when non-empty.
	// Each entry must be a valid regular expression.
	NoisePatterns []string
	// KeepPunctuation disables punctuation stripping.
	KeepPunctuation bool
}

// Normalizer produces comparison keys from raw track metadata.
type Normalizer struct {
	noise     []*regexp.Regexp
	keepPunct bool
}

// New creates a Normalizer with the given options.
// Invalid noise patterns are an error at construction, not at use.
func New(opts Options) (*Normalizer, error) {
	patterns := opts.NoisePatterns
	if len(patterns) == 0 {
		patterns = defaultNoisePatterns
	}

	noise := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		noise = append(noise, re)
	}

	return &Normalizer{noise: noise, keepPunct: opts.KeepPunctuation}, nil
}

// MustNew is New for static configuration; panics on invalid patterns.
func MustNew(opts Options) *Normalizer {
	n, err := New(opts)
	if err != nil {
		panic(err)
	}
	return n
}

// Key derives the canonical comparison key for a track reference.
func (n *Normalizer) Key(ref models.RawTrackRef) models.NormalizedKey {
	return models.NormalizedKey{
		Artist: n.Clean(ref.Artist),
		Title:  n.Clean(ref.Title),
		Album:  n.Clean(ref.Album),
	}
}

// Clean canonicalizes a single metadata string: case fold, diacritic strip,
// noise removal, punctuation strip, whitespace collapse.
func (n *Normalizer) Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	for _, re := range n.noise {
		s = re.ReplaceAllString(s, "")
	}
	s = featuringPattern.ReplaceAllString(s, "")

	s = strings.ToLower(s)
	s = stripDiacritics(s)

	if !n.keepPunct {
		s = punctuation.ReplaceAllString(s, "")
	}

	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitArtistTitle splits a "Artist - Title" display string.
// Returns empty artist when no separator is present.
func SplitArtistTitle(s string) (artist, title string) {
	if m := artistTitleSeparator.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", strings.TrimSpace(s)
}

// stripDiacritics decomposes to NFD and drops combining marks, so "Beyoncé"
// and "Beyonce" compare equal.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
