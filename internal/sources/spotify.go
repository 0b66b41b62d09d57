// Spotify playlist adapter.
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package sources

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"syncra/internal/models"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

const spotifyPageSize = 100

// SpotifyAdapter reads one Spotify playlist via the Web API.
type SpotifyAdapter struct {
	playlistID string
	client     *http.Client
	baseURL    string
}

// NewSpotifyAdapter creates an adapter for the given playlist using a bearer
// token. Token acquisition is the caller's concern.
func NewSpotifyAdapter(playlistID, accessToken string) *SpotifyAdapter {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &SpotifyAdapter{
		playlistID: playlistID,
		client:     oauth2.NewClient(context.Background(), src),
		baseURL:    spotifyBaseURL,
	}
}

func (a *SpotifyAdapter) Name() string { return "spotify" }

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
}

type spotifyPlaylistItem struct {
	Track *spotifyTrack `json:"track"`
}

type spotifyTracksPage struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
}

// ListTracks pages through the playlist's tracks in playlist order.
func (a *SpotifyAdapter) ListTracks(ctx context.Context) ([]models.RawTrackRef, error) {
	var refs []models.RawTrackRef

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", a.baseURL, a.playlistID, spotifyPageSize)
	for next != "" {
		var page spotifyTracksPage
		if err := fetchJSON(ctx, a.client, next, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			// Local files and removed tracks come back with a null track
			if item.Track == nil {
				continue
			}

			ref := models.RawTrackRef{
				Source:      models.SourceSpotify,
				Title:       item.Track.Name,
				Album:       item.Track.Album.Name,
				DurationSec: item.Track.DurationMS / 1000,
			}
			if len(item.Track.Artists) > 0 {
				ref.Artist = item.Track.Artists[0].Name
			}
			refs = append(refs, ref)
		}

		if page.Next == nil {
			break
		}
		next = *page.Next
	}

	return refs, nil
}
