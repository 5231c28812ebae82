// Package registry holds the static table of supported cities. The table is
// built once at startup and injected into the acquisition services; asking
// for a city outside it is a caller bug, rejected before any I/O happens.
package registry

import (
	"errors"
	"fmt"
)

// ErrUnknownCity reports a lookup for a city identifier that is not part of
// the registry.
var ErrUnknownCity = errors.New("unknown city")

// Profile describes one supported city.
type Profile struct {
	// ID is the canonical identifier. It doubles as the cache key for the
	// city's records in every tier.
	ID          string
	Timezone    string
	DisplayName string
	Latitude    float64
	Longitude   float64
	// WeatherID is the remote weather provider's city identifier. When empty
	// the weather client falls back to a coordinate lookup.
	WeatherID string
}

// Registry is an immutable lookup table of city profiles.
type Registry struct {
	byID map[string]Profile
	ids  []string
}

// New builds a registry from profiles, preserving their order. Empty or
// duplicate identifiers and profiles without a time zone are rejected.
func New(profiles []Profile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, errors.New("registry requires at least one city profile")
	}
	r := &Registry{byID: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if p.ID == "" {
			return nil, errors.New("city profile has an empty id")
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate city id %q", p.ID)
		}
		if p.Timezone == "" {
			return nil, fmt.Errorf("city %q has no time zone", p.ID)
		}
		r.byID[p.ID] = p
		r.ids = append(r.ids, p.ID)
	}
	return r, nil
}

// Default returns the built-in city set.
func Default() *Registry {
	r, err := New([]Profile{
		{
			ID:          "london",
			Timezone:    "Europe/London",
			DisplayName: "London",
			Latitude:    51.5074,
			Longitude:   -0.1278,
			WeatherID:   "2643743",
		},
		{
			ID:          "tokyo",
			Timezone:    "Asia/Tokyo",
			DisplayName: "Tokyo",
			Latitude:    35.6762,
			Longitude:   139.6503,
			WeatherID:   "1850147",
		},
		{
			ID:          "newyork",
			Timezone:    "America/New_York",
			DisplayName: "New York",
			Latitude:    40.7128,
			Longitude:   -74.0060,
			WeatherID:   "5128581",
		},
	})
	if err != nil {
		// The built-in table is static; New cannot fail on it.
		panic(err)
	}
	return r
}

// Lookup returns the profile for id.
func (r *Registry) Lookup(id string) (Profile, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// IDs returns the city identifiers in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered cities.
func (r *Registry) Len() int {
	return len(r.ids)
}
