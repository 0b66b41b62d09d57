// Deezer playlist adapter. The playlist tracks endpoint is public and
// requires no credentials.
package sources

import (
	"context"
	"fmt"
	"net/http"

	"syncra/internal/models"
)

const deezerBaseURL = "https://api.deezer.com"

// DeezerAdapter reads one Deezer playlist via the public API.
type DeezerAdapter struct {
	playlistID string
	client     *http.Client
	baseURL    string
}

// NewDeezerAdapter creates an adapter for the given playlist ID.
func NewDeezerAdapter(playlistID string, client *http.Client) *DeezerAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &DeezerAdapter{playlistID: playlistID, client: client, baseURL: deezerBaseURL}
}

func (a *DeezerAdapter) Name() string { return "deezer" }

type deezerArtist struct {
	Name string `json:"name"`
}

type deezerAlbum struct {
	Title string `json:"title"`
}

type deezerTrack struct {
	Title    string       `json:"title"`
	Duration int          `json:"duration"`
	Artist   deezerArtist `json:"artist"`
	Album    deezerAlbum  `json:"album"`
}

type deezerTracksPage struct {
	Data []deezerTrack `json:"data"`
	Next *string       `json:"next"`
}

// ListTracks pages through the playlist's tracks in playlist order.
func (a *DeezerAdapter) ListTracks(ctx context.Context) ([]models.RawTrackRef, error) {
	var refs []models.RawTrackRef

	next := fmt.Sprintf("%s/playlist/%s/tracks", a.baseURL, a.playlistID)
	for next != "" {
		var page deezerTracksPage
		if err := fetchJSON(ctx, a.client, next, nil, &page); err != nil {
			return nil, err
		}

		for _, tr := range page.Data {
			refs = append(refs, models.RawTrackRef{
				Source:      models.SourceDeezer,
				Artist:      tr.Artist.Name,
				Title:       tr.Title,
				Album:       tr.Album.Title,
				DurationSec: tr.Duration,
			})
		}

		if page.Next == nil {
			break
		}
		next = *page.Next
	}

	return refs, nil
}
