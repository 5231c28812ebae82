// Package temporal resolves current local time for registered cities through
// three tiers: the persisted cache, a remote time API, and the local clock.
package temporal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single time API call so one slow endpoint cannot
// stall the other cities' resolutions.
const DefaultTimeout = 5 * time.Second

// InstantSource supplies the current instant for an IANA time zone name.
// Implementations report every failure mode (network, status, payload) as an
// error; the service treats any error as "tier unavailable" and moves on.
type InstantSource interface {
	CurrentTime(ctx context.Context, timezone string) (time.Time, error)
}

// Client consumes a worldtimeapi-style REST endpoint: GET {base}/{zone}
// returns a JSON body whose datetime field holds an ISO 8601 instant.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a time API client. The API key may be empty; the public
// endpoint accepts unauthenticated requests.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type timeResponse struct {
	Datetime string `json:"datetime"`
}

// CurrentTime fetches the current instant for the zone.
func (c *Client) CurrentTime(ctx context.Context, timezone string) (time.Time, error) {
	// Zone names contain slashes (Europe/London) that belong in the path.
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, timezone)
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build time request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("time request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("time API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read time response: %w", err)
	}

	var payload timeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time response: %w", err)
	}
	if payload.Datetime == "" {
		return time.Time{}, errors.New("time response missing datetime field")
	}

	instant, err := time.Parse(time.RFC3339, payload.Datetime)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse datetime %q: %w", payload.Datetime, err)
	}
	return instant, nil
}
