package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"syncra/internal/shared"
)

const (
	fetchAttempts = 3
	fetchBackoff  = 500 * time.Millisecond
)

// fetchJSON performs a GET with bounded retries and decodes the JSON body.
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff; other failure statuses map straight to sentinel errors.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	backoff := fetchBackoff

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", shared.ErrNetwork, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", shared.ErrParse, err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("%w: status %d from %s", shared.ErrUnauthorized, resp.StatusCode, rawURL)
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%w: %s", shared.ErrNotFound, rawURL)
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", shared.ErrRateLimited, rawURL)
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: status %d from %s", shared.ErrServiceUnavailable, resp.StatusCode, rawURL)
		default:
			resp.Body.Close()
			return fmt.Errorf("%w: unexpected status %d from %s", shared.ErrNetwork, resp.StatusCode, rawURL)
		}
	}

	return lastErr
}
