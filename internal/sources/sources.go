// package sources provides playlist source adapters.
//
// An Adapter yields the ordered track references of one external playlist:
// a local .m3u/.m3u8 file or a streaming catalog playlist (Spotify, Deezer,
// Tidal). Adapters normalize nothing; they surface metadata as the source
// reports it.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"syncra/internal/models"
	"syncra/internal/shared"
)

// Adapter yields the ordered track references of a playlist source.
type Adapter interface {
	// ListTracks returns one RawTrackRef per playlist entry, in source order.
	ListTracks(ctx context.Context) ([]models.RawTrackRef, error)

	// Name returns the source name for logs and reports.
	Name() string
}

// ForURL builds the adapter for a streaming playlist URL, inferring the
// catalog from the host.
func ForURL(raw string, cfg *shared.Config, client *http.Client) (Adapter, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	id, err := playlistIDFromPath(u.Path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(host, "spotify.com"):
		if cfg.Services.Spotify.AccessToken == "" {
			return nil, fmt.Errorf("%w: spotify access token", shared.ErrMissingCredentials)
		}
		return NewSpotifyAdapter(id, cfg.Services.Spotify.AccessToken), nil
	case strings.HasSuffix(host, "deezer.com"):
		return NewDeezerAdapter(id, client), nil
	case strings.HasSuffix(host, "tidal.com"):
		if cfg.Services.Tidal.Token == "" {
			return nil, fmt.Errorf("%w: tidal token", shared.ErrMissingCredentials)
		}
		return NewTidalAdapter(id, cfg.Services.Tidal.Token, cfg.Services.Tidal.CountryCode, client), nil
	default:
		return nil, fmt.Errorf("%w: unsupported playlist host %q", shared.ErrInvalidArgument, host)
	}
}

// playlistIDFromPath pulls the playlist ID out of a catalog URL path,
// e.g. /playlist/37i9dQZF1DXcBWIGoYBM5M or /en/playlist/uuid.
func playlistIDFromPath(path string) (string, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == "playlist" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: no playlist ID in URL path %q", shared.ErrInvalidArgument, path)
}
