package sources

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"syncra/internal/models"
	"syncra/internal/normalize"
	"syncra/internal/shared"
)

// M3UAdapter reads track references from an .m3u/.m3u8 playlist file.
type M3UAdapter struct {
	path string
	r    io.Reader
}

// NewM3UAdapter creates an adapter that reads the playlist file at path.
func NewM3UAdapter(path string) *M3UAdapter {
	return &M3UAdapter{path: path}
}

// NewM3UReader creates an adapter over an already-open reader.
func NewM3UReader(r io.Reader) *M3UAdapter {
	return &M3UAdapter{r: r}
}

func (a *M3UAdapter) Name() string { return "m3u" }

// ListTracks parses the playlist and returns its entries in file order.
func (a *M3UAdapter) ListTracks(ctx context.Context) ([]models.RawTrackRef, error) {
	r := a.r
	if r == nil {
		f, err := os.Open(a.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open playlist: %w", err)
		}
		defer f.Close()
		r = f
	}
	return ParseM3U(r)
}

// ParseM3U parses extended or plain m3u content.
//
// #EXTINF lines carry a duration and an "Artist - Title" display string for
// the entry that follows. Other # lines are comments. Bare lines are paths;
// entries without an EXTINF take their title from the file name.
func ParseM3U(r io.Reader) ([]models.RawTrackRef, error) {
	var refs []models.RawTrackRef

	var pendingDuration int
	var pendingDisplay string
	hasPending := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#EXTINF:") {
				pendingDuration, pendingDisplay = parseExtInf(line)
				hasPending = true
			}
			continue
		}

		ref := models.RawTrackRef{Source: models.SourceM3U, Path: line}
		if hasPending {
			ref.DurationSec = pendingDuration
			ref.Artist, ref.Title = normalize.SplitArtistTitle(pendingDisplay)
		}
		if ref.Title == "" {
			base := filepath.Base(line)
			ref.Title = strings.TrimSuffix(base, filepath.Ext(base))
		}

		refs = append(refs, ref)
		hasPending = false
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}

	return refs, nil
}

// parseExtInf splits "#EXTINF:<secs>,<display>". A malformed duration is
// treated as unknown rather than failing the entry.
func parseExtInf(line string) (duration int, display string) {
	body := strings.TrimPrefix(line, "#EXTINF:")
	durPart, disp, found := strings.Cut(body, ",")
	if !found {
		disp = ""
	}
	if d, err := strconv.Atoi(strings.TrimSpace(durPart)); err == nil && d > 0 {
		duration = d
	}
	return duration, strings.TrimSpace(disp)
}

// WriteM3U writes tracks as an extended m3u playlist. Entries without a
// file path fall back to the display string as the location line.
func WriteM3U(w io.Writer, tracks []models.LibraryTrack) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return fmt.Errorf("failed to write playlist header: %w", err)
	}

	for _, tr := range tracks {
		display := tr.Title
		if tr.Artist != "" {
			display = tr.Artist + " - " + tr.Title
		}

		location := tr.Path
		if location == "" {
			location = display
		}

		if _, err := fmt.Fprintf(bw, "#EXTINF:%d,%s\n%s\n", tr.DurationSec, display, location); err != nil {
			return fmt.Errorf("failed to write playlist entry: %w", err)
		}
	}

	return bw.Flush()
}
