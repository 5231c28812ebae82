package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidProfiles(t *testing.T) {
	tests := []struct {
		name     string
		profiles []Profile
	}{
		{name: "empty set", profiles: nil},
		{
			name:     "empty id",
			profiles: []Profile{{ID: "", Timezone: "Europe/London"}},
		},
		{
			name: "duplicate id",
			profiles: []Profile{
				{ID: "london", Timezone: "Europe/London"},
				{ID: "london", Timezone: "Europe/London"},
			},
		},
		{
			name:     "missing time zone",
			profiles: []Profile{{ID: "london"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.profiles)
			assert.Error(t, err)
		})
	}
}

func TestNewPreservesOrder(t *testing.T) {
	r, err := New([]Profile{
		{ID: "b", Timezone: "UTC"},
		{ID: "a", Timezone: "UTC"},
		{ID: "c", Timezone: "UTC"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, r.IDs())
	assert.Equal(t, 3, r.Len())
}

func TestDefaultCities(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{"london", "tokyo", "newyork"}, r.IDs())

	london, ok := r.Lookup("london")
	require.True(t, ok)
	assert.Equal(t, "Europe/London", london.Timezone)
	assert.Equal(t, "London", london.DisplayName)
	assert.Equal(t, "2643743", london.WeatherID)
	assert.InDelta(t, 51.5074, london.Latitude, 0.0001)

	tokyo, ok := r.Lookup("tokyo")
	require.True(t, ok)
	assert.Equal(t, "Asia/Tokyo", tokyo.Timezone)

	newyork, ok := r.Lookup("newyork")
	require.True(t, ok)
	assert.Equal(t, "America/New_York", newyork.Timezone)
	assert.Equal(t, "New York", newyork.DisplayName)
}

func TestLookupUnknownCity(t *testing.T) {
	r := Default()

	_, ok := r.Lookup("atlantis")
	assert.False(t, ok)

	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestIDsReturnsCopy(t *testing.T) {
	r := Default()

	ids := r.IDs()
	ids[0] = "mutated"

	assert.Equal(t, "london", r.IDs()[0])
}
