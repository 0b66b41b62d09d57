package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"syncra/internal/models"
	"syncra/internal/shared"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(shared.PlexConfig{URL: srv.URL, Token: "test-token", SectionID: "1"}, srv.Client(), nil)
}

const itemsXML = `<MediaContainer size="3" title="Roadtrip">
	<Track ratingKey="101" playlistItemID="9001" title="Song A" grandparentTitle="Artist A" parentTitle="Album A" duration="201000">
		<Media><Part file="/music/a.mp3"/></Media>
	</Track>
	<Track ratingKey="102" playlistItemID="9002" title="Song B" grandparentTitle="Artist B" parentTitle="Album B" duration="95000"/>
	<Track ratingKey="101" playlistItemID="9003" title="Song A" grandparentTitle="Artist A" parentTitle="Album A" duration="201000"/>
</MediaContainer>`

func TestSearch(t *testing.T) {
	var gotToken, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("X-Plex-Token")
		gotType = r.URL.Query().Get("type")
		if r.URL.Path != "/library/sections/1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `<MediaContainer size="2">
			<Track ratingKey="201" title="Bohemian Rhapsody" grandparentTitle="Queen" parentTitle="A Night at the Opera" duration="354000">
				<Media><Part file="/music/queen/br.flac"/></Media>
			</Track>
			<Track ratingKey="202" title="Bohemian Rhapsody (Live)" grandparentTitle="Queen" parentTitle="Live Killers" duration="420000"/>
		</MediaContainer>`)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	tracks, err := client.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("token not sent, got %q", gotToken)
	}
	if gotType != "10" {
		t.Errorf("expected track type filter, got %q", gotType)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}

	want := models.LibraryTrack{
		ID: "201", Artist: "Queen", Title: "Bohemian Rhapsody",
		Album: "A Night at the Opera", DurationSec: 354, Path: "/music/queen/br.flac",
	}
	if tracks[0] != want {
		t.Errorf("first track = %+v, want %+v", tracks[0], want)
	}
}

func TestGetPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, itemsXML)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	pl, err := client.GetPlaylist(context.Background(), "55")
	if err != nil {
		t.Fatalf("get playlist failed: %v", err)
	}

	if pl.Name != "Roadtrip" {
		t.Errorf("name = %q, want Roadtrip", pl.Name)
	}
	// Duplicate track IDs preserved in order
	want := []string{"101", "102", "101"}
	if len(pl.TrackIDs) != len(want) {
		t.Fatalf("track IDs = %v, want %v", pl.TrackIDs, want)
	}
	for i := range want {
		if pl.TrackIDs[i] != want[i] {
			t.Errorf("track ID %d = %q, want %q", i, pl.TrackIDs[i], want[i])
		}
	}
}

func TestPlaylists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<MediaContainer size="3">
			<Playlist ratingKey="1" title="Roadtrip" smart="0" leafCount="10"/>
			<Playlist ratingKey="2" title="Recently Added" smart="1" leafCount="50"/>
			<Playlist ratingKey="3" title="Workout" smart="0" leafCount="25"/>
		</MediaContainer>`)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	playlists, err := client.Playlists(context.Background())
	if err != nil {
		t.Fatalf("playlists failed: %v", err)
	}

	if len(playlists) != 2 {
		t.Fatalf("expected smart playlist skipped, got %d playlists", len(playlists))
	}
	if playlists[0].Name != "Roadtrip" || playlists[1].Name != "Workout" {
		t.Errorf("unexpected playlists: %+v", playlists)
	}
}

func TestFindPlaylistByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/playlists" {
			fmt.Fprint(w, `<MediaContainer size="1">
				<Playlist ratingKey="55" title="Roadtrip" smart="0"/>
			</MediaContainer>`)
			return
		}
		fmt.Fprint(w, itemsXML)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	pl, err := client.FindPlaylistByName(context.Background(), "roadtrip")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if pl.ID != "55" || len(pl.TrackIDs) != 3 {
		t.Errorf("unexpected playlist: %+v", pl)
	}

	if _, err := client.FindPlaylistByName(context.Background(), "Missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
		t.Errorf("expected playlist not found, got %v", err)
	}
}

func TestCreatePlaylist(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/identity" {
			fmt.Fprint(w, `<MediaContainer machineIdentifier="abc123"/>`)
			return
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotURI = r.URL.Query().Get("uri")
		fmt.Fprint(w, `<MediaContainer size="1">
			<Playlist ratingKey="77" title="New Mix" smart="0"/>
		</MediaContainer>`)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	pl, err := client.CreatePlaylist(context.Background(), "New Mix")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if pl.ID != "77" || pl.Name != "New Mix" {
		t.Errorf("unexpected playlist: %+v", pl)
	}
	if gotURI != "server://abc123/com.plexapp.plugins.library" {
		t.Errorf("unexpected uri %q", gotURI)
	}
}

func TestDeletePlaylist(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	if err := client.DeletePlaylist(context.Background(), "55"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/playlists/55" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestApplyEdit(t *testing.T) {
	t.Run("remove maps position to item ID", func(t *testing.T) {
		var deleted string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				deleted = r.URL.Path
				w.WriteHeader(http.StatusOK)
				return
			}
			fmt.Fprint(w, itemsXML)
		}))
		defer srv.Close()

		client := newTestClient(srv)
		err := client.ApplyEdit(context.Background(), "55", models.EditOp{Kind: models.EditRemove, Pos: 1})
		if err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if deleted != "/playlists/55/items/9002" {
			t.Errorf("deleted %q, want item 9002", deleted)
		}
	})

	t.Run("remove out of range is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, itemsXML)
		}))
		defer srv.Close()

		client := newTestClient(srv)
		err := client.ApplyEdit(context.Background(), "55", models.EditOp{Kind: models.EditRemove, Pos: 7})
		if !errors.Is(err, shared.ErrMutationRejected) {
			t.Errorf("expected mutation rejected, got %v", err)
		}
	})

	t.Run("insert appends then moves into position", func(t *testing.T) {
		var appendURI string
		var movePath, moveAfter string
		appended := false

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/identity":
				fmt.Fprint(w, `<MediaContainer machineIdentifier="abc123"/>`)
			case r.Method == http.MethodPut && r.URL.Path == "/playlists/55/items":
				appendURI = r.URL.Query().Get("uri")
				appended = true
				w.WriteHeader(http.StatusOK)
			case r.Method == http.MethodPut:
				movePath = r.URL.Path
				moveAfter = r.URL.Query().Get("after")
				w.WriteHeader(http.StatusOK)
			default:
				// After the append the new item shows up at the tail
				if appended {
					fmt.Fprint(w, `<MediaContainer size="4" title="Roadtrip">
						<Track ratingKey="101" playlistItemID="9001" title="Song A"/>
						<Track ratingKey="102" playlistItemID="9002" title="Song B"/>
						<Track ratingKey="101" playlistItemID="9003" title="Song A"/>
						<Track ratingKey="300" playlistItemID="9004" title="New Song"/>
					</MediaContainer>`)
					return
				}
				fmt.Fprint(w, itemsXML)
			}
		}))
		defer srv.Close()

		client := newTestClient(srv)
		err := client.ApplyEdit(context.Background(), "55", models.EditOp{Kind: models.EditInsert, TrackID: "300", Pos: 1})
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		if appendURI != "server://abc123/com.plexapp.plugins.library/library/metadata/300" {
			t.Errorf("unexpected append uri %q", appendURI)
		}
		if movePath != "/playlists/55/items/9004/move" {
			t.Errorf("unexpected move path %q", movePath)
		}
		if moveAfter != "9001" {
			t.Errorf("expected move after item 9001, got %q", moveAfter)
		}
	})

	t.Run("move resolves after against remaining items", func(t *testing.T) {
		var moveAfter string
		var movePath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				movePath = r.URL.Path
				moveAfter = r.URL.Query().Get("after")
				w.WriteHeader(http.StatusOK)
				return
			}
			fmt.Fprint(w, itemsXML)
		}))
		defer srv.Close()

		client := newTestClient(srv)
		err := client.ApplyEdit(context.Background(), "55", models.EditOp{Kind: models.EditMove, From: 0, To: 2})
		if err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if movePath != "/playlists/55/items/9001/move" {
			t.Errorf("unexpected move path %q", movePath)
		}
		if moveAfter != "9003" {
			t.Errorf("expected move after item 9003, got %q", moveAfter)
		}
	})
}

func TestStatusMapping(t *testing.T) {
	tc := []struct {
		status  int
		wantErr error
	}{
		{status: http.StatusUnauthorized, wantErr: shared.ErrUnauthorized},
		{status: http.StatusNotFound, wantErr: shared.ErrNotFound},
		{status: http.StatusTooManyRequests, wantErr: shared.ErrRateLimited},
		{status: http.StatusInternalServerError, wantErr: shared.ErrNetwork},
	}

	for _, tt := range tc {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := newTestClient(srv)
		_, err := client.Search(context.Background(), "a", "b")
		srv.Close()

		if !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.wantErr, err)
		}
	}
}
