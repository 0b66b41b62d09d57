package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"syncra/internal/shared"
)

func TestFetchJSON(t *testing.T) {
	t.Run("decodes success response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"value":"ok"}`))
		}))
		defer srv.Close()

		var out struct {
			Value string `json:"value"`
		}
		if err := fetchJSON(context.Background(), srv.Client(), srv.URL, nil, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Value != "ok" {
			t.Errorf("decoded %q, want ok", out.Value)
		}
	})

	t.Run("sends headers", func(t *testing.T) {
		var gotToken string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Tidal-Token")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		var out struct{}
		header := http.Header{"X-Tidal-Token": []string{"secret"}}
		if err := fetchJSON(context.Background(), srv.Client(), srv.URL, header, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotToken != "secret" {
			t.Errorf("header not sent, got %q", gotToken)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"value":"ok"}`))
		}))
		defer srv.Close()

		var out struct {
			Value string `json:"value"`
		}
		if err := fetchJSON(context.Background(), srv.Client(), srv.URL, nil, &out); err != nil {
			t.Fatalf("expected recovery after retries, got %v", err)
		}
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		var out struct{}
		err := fetchJSON(context.Background(), srv.Client(), srv.URL, nil, &out)
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected rate limited error, got %v", err)
		}
		if attempts != fetchAttempts {
			t.Errorf("expected %d attempts, got %d", fetchAttempts, attempts)
		}
	})

	t.Run("does not retry terminal statuses", func(t *testing.T) {
		tc := []struct {
			status  int
			wantErr error
		}{
			{status: http.StatusUnauthorized, wantErr: shared.ErrUnauthorized},
			{status: http.StatusForbidden, wantErr: shared.ErrUnauthorized},
			{status: http.StatusNotFound, wantErr: shared.ErrNotFound},
			{status: http.StatusBadRequest, wantErr: shared.ErrNetwork},
		}

		for _, tt := range tc {
			attempts := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))

			var out struct{}
			err := fetchJSON(context.Background(), srv.Client(), srv.URL, nil, &out)
			srv.Close()

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("status %d: expected %v, got %v", tt.status, tt.wantErr, err)
			}
			if attempts != 1 {
				t.Errorf("status %d: expected 1 attempt, got %d", tt.status, attempts)
			}
		}
	})

	t.Run("malformed body is a parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		var out struct{}
		if err := fetchJSON(context.Background(), srv.Client(), srv.URL, nil, &out); !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out struct{}
		err := fetchJSON(ctx, srv.Client(), srv.URL, nil, &out)
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}
