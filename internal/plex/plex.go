// package plex implements the target library client for a Plex media server.
//
// The client exposes two capabilities: track search over a music section and
// playlist mutation (fetch, create, delete, single edit ops). Responses are
// the server's XML containers; only the attributes the engine needs are
// decoded.
package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"syncra/internal/models"
	"syncra/internal/shared"
)

// Client talks to one Plex server over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	sectionID  string
	httpClient *http.Client
	logger     *log.Logger

	mu        sync.Mutex
	machineID string
}

// NewClient creates a Plex client from the server connection settings.
func NewClient(cfg shared.PlexConfig, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		sectionID:  cfg.SectionID,
		httpClient: httpClient,
		logger:     shared.WithLogger(logger, "component", "plex"),
	}
}

// XML containers, attribute subset only

type mediaContainer struct {
	XMLName           xml.Name       `xml:"MediaContainer"`
	MachineIdentifier string         `xml:"machineIdentifier,attr"`
	Title             string         `xml:"title,attr"`
	Tracks            []plexTrack    `xml:"Track"`
	Playlists         []plexPlaylist `xml:"Playlist"`
}

type plexTrack struct {
	RatingKey        string      `xml:"ratingKey,attr"`
	PlaylistItemID   string      `xml:"playlistItemID,attr"`
	Title            string      `xml:"title,attr"`
	GrandparentTitle string      `xml:"grandparentTitle,attr"` // artist
	ParentTitle      string      `xml:"parentTitle,attr"`      // album
	Duration         int         `xml:"duration,attr"`         // milliseconds
	Media            []plexMedia `xml:"Media"`
}

type plexMedia struct {
	Parts []plexPart `xml:"Part"`
}

type plexPart struct {
	File string `xml:"file,attr"`
}

type plexPlaylist struct {
	RatingKey string `xml:"ratingKey,attr"`
	Title     string `xml:"title,attr"`
	Smart     string `xml:"smart,attr"`
	LeafCount int    `xml:"leafCount,attr"`
}

// Search queries the music section for tracks, returning them in library
// order. The artist argument is unused server-side; candidates are filtered
// by the matcher, not here.
func (c *Client) Search(ctx context.Context, artist, title string) ([]models.LibraryTrack, error) {
	q := url.Values{}
	q.Set("type", "10")
	q.Set("title", title)

	container, err := c.get(ctx, fmt.Sprintf("/library/sections/%s/search", c.sectionID), q)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.LibraryTrack, 0, len(container.Tracks))
	for _, t := range container.Tracks {
		tracks = append(tracks, toLibraryTrack(t))
	}
	return tracks, nil
}

// Playlists lists the server's audio playlists. Smart playlists are skipped;
// their contents are rule-driven and cannot be edited item by item.
func (c *Client) Playlists(ctx context.Context) ([]models.Playlist, error) {
	q := url.Values{}
	q.Set("playlistType", "audio")

	container, err := c.get(ctx, "/playlists", q)
	if err != nil {
		return nil, err
	}

	var playlists []models.Playlist
	for _, p := range container.Playlists {
		if p.Smart == "1" {
			continue
		}
		playlists = append(playlists, models.Playlist{ID: p.RatingKey, Name: p.Title})
	}
	return playlists, nil
}

// GetPlaylist fetches a playlist's current ordered track IDs.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	container, err := c.items(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	pl := &models.Playlist{ID: playlistID, Name: container.Title, TrackIDs: make([]string, 0, len(container.Tracks))}
	for _, t := range container.Tracks {
		pl.TrackIDs = append(pl.TrackIDs, t.RatingKey)
	}
	return pl, nil
}

// PlaylistTracks fetches a playlist's items with full track metadata,
// for export.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]models.LibraryTrack, error) {
	container, err := c.items(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.LibraryTrack, 0, len(container.Tracks))
	for _, t := range container.Tracks {
		tracks = append(tracks, toLibraryTrack(t))
	}
	return tracks, nil
}

// FindPlaylistByName resolves a playlist by case-insensitive exact name.
func (c *Client) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := c.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range playlists {
		if strings.EqualFold(p.Name, name) {
			return c.GetPlaylist(ctx, p.ID)
		}
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// CreatePlaylist creates an empty audio playlist.
func (c *Client) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	mid, err := c.machineIdentifier(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("type", "audio")
	q.Set("smart", "0")
	q.Set("title", name)
	q.Set("uri", fmt.Sprintf("server://%s/com.plexapp.plugins.library", mid))

	container, err := c.do(ctx, http.MethodPost, "/playlists", q)
	if err != nil {
		return nil, fmt.Errorf("%w: create playlist %q: %v", shared.ErrMutationRejected, name, err)
	}
	if len(container.Playlists) == 0 {
		return nil, fmt.Errorf("%w: server returned no playlist for %q", shared.ErrMutationRejected, name)
	}

	c.logger.Info("created playlist", "name", name, "id", container.Playlists[0].RatingKey)
	return &models.Playlist{ID: container.Playlists[0].RatingKey, Name: container.Playlists[0].Title}, nil
}

// DeletePlaylist removes a playlist from the server. The library tracks it
// references are untouched.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/playlists/"+playlistID, nil); err != nil {
		return err
	}
	c.logger.Info("deleted playlist", "id", playlistID)
	return nil
}

// ApplyEdit executes one edit op against the playlist. Positions refer to
// the playlist's current state; the op fails rather than guessing when the
// state no longer matches.
func (c *Client) ApplyEdit(ctx context.Context, playlistID string, op models.EditOp) error {
	switch op.Kind {
	case models.EditInsert:
		return c.insertTrack(ctx, playlistID, op.TrackID, op.Pos)
	case models.EditRemove:
		return c.removeAt(ctx, playlistID, op.Pos)
	case models.EditMove:
		return c.moveItem(ctx, playlistID, op.From, op.To)
	default:
		return fmt.Errorf("%w: unknown edit kind %d", shared.ErrInvalidArgument, op.Kind)
	}
}

// insertTrack appends the track, then moves it into position when the
// target is not the tail.
func (c *Client) insertTrack(ctx context.Context, playlistID, trackID string, pos int) error {
	mid, err := c.machineIdentifier(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("uri", fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s", mid, trackID))

	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/playlists/%s/items", playlistID), q); err != nil {
		return fmt.Errorf("%w: insert track %s: %v", shared.ErrMutationRejected, trackID, err)
	}

	container, err := c.items(ctx, playlistID)
	if err != nil {
		return err
	}
	n := len(container.Tracks)
	if n == 0 {
		return fmt.Errorf("%w: appended track %s not present", shared.ErrMutationRejected, trackID)
	}
	if pos < 0 || pos >= n {
		// Appended at the tail, which is where out-of-band positions land
		if pos == n-1 {
			return nil
		}
		return fmt.Errorf("%w: insert position %d out of range", shared.ErrMutationRejected, pos)
	}
	if pos == n-1 {
		return nil
	}

	itemID := container.Tracks[n-1].PlaylistItemID
	afterID := ""
	if pos > 0 {
		afterID = container.Tracks[pos-1].PlaylistItemID
	}
	return c.moveItemID(ctx, playlistID, itemID, afterID)
}

// removeAt deletes the item at the given position.
func (c *Client) removeAt(ctx context.Context, playlistID string, pos int) error {
	container, err := c.items(ctx, playlistID)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(container.Tracks) {
		return fmt.Errorf("%w: remove position %d out of range", shared.ErrMutationRejected, pos)
	}

	itemID := container.Tracks[pos].PlaylistItemID
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/playlists/%s/items/%s", playlistID, itemID), nil); err != nil {
		return fmt.Errorf("%w: remove item at %d: %v", shared.ErrMutationRejected, pos, err)
	}
	return nil
}

// moveItem relocates the item at from to index to.
func (c *Client) moveItem(ctx context.Context, playlistID string, from, to int) error {
	container, err := c.items(ctx, playlistID)
	if err != nil {
		return err
	}
	n := len(container.Tracks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d out of range", shared.ErrMutationRejected, from, to)
	}
	if from == to {
		return nil
	}

	itemID := container.Tracks[from].PlaylistItemID

	// "after" is resolved against the list without the moved item
	rest := make([]plexTrack, 0, n-1)
	rest = append(rest, container.Tracks[:from]...)
	rest = append(rest, container.Tracks[from+1:]...)

	afterID := ""
	if to > 0 {
		afterID = rest[to-1].PlaylistItemID
	}
	return c.moveItemID(ctx, playlistID, itemID, afterID)
}

func (c *Client) moveItemID(ctx context.Context, playlistID, itemID, afterID string) error {
	q := url.Values{}
	if afterID != "" {
		q.Set("after", afterID)
	}

	path := fmt.Sprintf("/playlists/%s/items/%s/move", playlistID, itemID)
	if _, err := c.do(ctx, http.MethodPut, path, q); err != nil {
		return fmt.Errorf("%w: move item %s: %v", shared.ErrMutationRejected, itemID, err)
	}
	return nil
}

// machineIdentifier fetches and caches the server's machine ID, needed for
// playlist item URIs.
func (c *Client) machineIdentifier(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machineID != "" {
		return c.machineID, nil
	}

	container, err := c.get(ctx, "/identity", nil)
	if err != nil {
		return "", err
	}
	if container.MachineIdentifier == "" {
		return "", fmt.Errorf("%w: server identity has no machine identifier", shared.ErrParse)
	}

	c.machineID = container.MachineIdentifier
	return c.machineID, nil
}

func (c *Client) items(ctx context.Context, playlistID string) (*mediaContainer, error) {
	return c.get(ctx, fmt.Sprintf("/playlists/%s/items", playlistID), nil)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*mediaContainer, error) {
	return c.do(ctx, http.MethodGet, path, q)
}

// do performs one authenticated request and decodes the XML container.
func (c *Client) do(ctx context.Context, method, path string, q url.Values) (*mediaContainer, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("X-Plex-Token", c.token)

	reqURL := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", shared.ErrRateLimited, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d from %s", shared.ErrNetwork, resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	container := &mediaContainer{}
	if len(body) > 0 {
		if err := xml.Unmarshal(body, container); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
		}
	}
	return container, nil
}

func toLibraryTrack(t plexTrack) models.LibraryTrack {
	track := models.LibraryTrack{
		ID:          t.RatingKey,
		Artist:      t.GrandparentTitle,
		Title:       t.Title,
		Album:       t.ParentTitle,
		DurationSec: t.Duration / 1000,
	}
	if len(t.Media) > 0 && len(t.Media[0].Parts) > 0 {
		track.Path = t.Media[0].Parts[0].File
	}
	return track
}
