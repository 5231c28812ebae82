// Package atmospheric resolves current weather for registered cities through
// three tiers: the persisted cache, the remote weather API, and a
// deterministic local synthesizer.
package atmospheric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/treellis/worldmatrix/internal/models"
	"github.com/treellis/worldmatrix/internal/registry"
)

// DefaultTimeout bounds a single weather API call.
const DefaultTimeout = 5 * time.Second

// Observation is a normalized reading from the remote weather provider:
// already in the requested unit system, with a title-cased condition label.
type Observation struct {
	Temperature float64
	Condition   string
	Humidity    int
	WindSpeed   float64
}

// ConditionsSource fetches current conditions for a city profile in the
// requested unit system. Implementations report every failure mode as an
// error; the service treats any error as "tier unavailable".
type ConditionsSource interface {
	Current(ctx context.Context, profile registry.Profile, units models.UnitSystem) (Observation, error)
}

// Client consumes the OpenWeatherMap current-weather endpoint. Lookups are
// keyed by the provider's city ID when the profile carries one, and by
// coordinates otherwise. A circuit breaker wraps the calls so repeated
// upstream failures stop hammering a dead endpoint and resolution falls
// through to synthesis immediately.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds a weather API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches current conditions for the profile through the breaker.
func (c *Client) Current(ctx context.Context, profile registry.Profile, units models.UnitSystem) (Observation, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, profile, units)
	})
	if err != nil {
		return Observation{}, err
	}
	obs, ok := result.(Observation)
	if !ok {
		return Observation{}, errors.New("unexpected circuit breaker result type")
	}
	return obs, nil
}

func (c *Client) fetch(ctx context.Context, profile registry.Profile, units models.UnitSystem) (Observation, error) {
	endpoint, err := c.buildURL(profile, units)
	if err != nil {
		return Observation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Observation{}, fmt.Errorf("failed to build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("failed to parse weather response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return Observation{}, errors.New("weather response missing condition")
	}

	// Title-case the provider's lowercase descriptions ("light rain").
	// cases.Caser is stateful, so build one per call rather than sharing.
	caser := cases.Title(language.English)

	return Observation{
		Temperature: payload.Main.Temp,
		Condition:   caser.String(payload.Weather[0].Description),
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}, nil
}

func (c *Client) buildURL(profile registry.Profile, units models.UnitSystem) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid weather API URL: %w", err)
	}

	params := url.Values{}
	params.Set("appid", c.apiKey)
	params.Set("units", string(units))
	if profile.WeatherID != "" {
		params.Set("id", profile.WeatherID)
	} else {
		params.Set("lat", strconv.FormatFloat(profile.Latitude, 'f', 4, 64))
		params.Set("lon", strconv.FormatFloat(profile.Longitude, 'f', 4, 64))
	}
	base.RawQuery = params.Encode()

	return base.String(), nil
}
