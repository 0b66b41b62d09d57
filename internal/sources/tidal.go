// Tidal playlist adapter. Requests carry the API token in the X-Tidal-Token
// header and a market country code as a query parameter.
package sources

import (
	"context"
	"fmt"
	"net/http"

	"syncra/internal/models"
)

const tidalBaseURL = "https://api.tidal.com/v1"

const tidalPageSize = 100

// TidalAdapter reads one Tidal playlist.
type TidalAdapter struct {
	playlistID  string
	token       string
	countryCode string
	client      *http.Client
	baseURL     string
}

// NewTidalAdapter creates an adapter for the given playlist UUID.
// The country code defaults to US.
func NewTidalAdapter(playlistID, token, countryCode string, client *http.Client) *TidalAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	if countryCode == "" {
		countryCode = "US"
	}
	return &TidalAdapter{
		playlistID:  playlistID,
		token:       token,
		countryCode: countryCode,
		client:      client,
		baseURL:     tidalBaseURL,
	}
}

func (a *TidalAdapter) Name() string { return "tidal" }

type tidalArtist struct {
	Name string `json:"name"`
}

type tidalAlbum struct {
	Title string `json:"title"`
}

type tidalTrack struct {
	Title    string      `json:"title"`
	Duration int         `json:"duration"`
	Artist   tidalArtist `json:"artist"`
	Album    tidalAlbum  `json:"album"`
}

type tidalTracksPage struct {
	Items              []tidalTrack `json:"items"`
	TotalNumberOfItems int          `json:"totalNumberOfItems"`
}

// ListTracks pages through the playlist's tracks in playlist order.
func (a *TidalAdapter) ListTracks(ctx context.Context) ([]models.RawTrackRef, error) {
	header := http.Header{"X-Tidal-Token": []string{a.token}}

	var refs []models.RawTrackRef
	offset := 0

	for {
		u := fmt.Sprintf("%s/playlists/%s/tracks?countryCode=%s&limit=%d&offset=%d",
			a.baseURL, a.playlistID, a.countryCode, tidalPageSize, offset)

		var page tidalTracksPage
		if err := fetchJSON(ctx, a.client, u, header, &page); err != nil {
			return nil, err
		}

		for _, tr := range page.Items {
			refs = append(refs, models.RawTrackRef{
				Source:      models.SourceTidal,
				Artist:      tr.Artist.Name,
				Title:       tr.Title,
				Album:       tr.Album.Title,
				DurationSec: tr.Duration,
			})
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalNumberOfItems {
			break
		}
	}

	return refs, nil
}
