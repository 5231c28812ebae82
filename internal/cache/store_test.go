package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treellis/worldmatrix/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestNewStoreCreatesKindDirectories(t *testing.T) {
	dir := t.TempDir()

	_, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	for _, kind := range []string{"temporal", "atmospheric"} {
		info, statErr := os.Stat(filepath.Join(dir, kind))
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}
}

func TestNewStoreRejectsEmptyDirectory(t *testing.T) {
	_, err := NewStore("", zerolog.Nop())
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := models.TemporalRecord{
		City:       "london",
		TimeText:   "2026-01-15 09:30:00 GMT",
		CapturedAt: time.Now().Unix(),
		Provenance: models.ProvenanceAPI,
	}
	require.NoError(t, store.PutTemporal(rec))

	got, hit := store.GetTemporal("london", time.Hour)
	require.True(t, hit)
	assert.Equal(t, rec, got, "a round trip must be identity on all fields")
	assert.Equal(t, rec.Fingerprint(), got.Fingerprint())
}

func TestStorePreservesProvenance(t *testing.T) {
	store := newTestStore(t)

	for _, prov := range []models.Provenance{
		models.ProvenanceAPI,
		models.ProvenanceFallback,
		models.ProvenanceCache,
	} {
		rec := models.AtmosphericRecord{
			City:        "tokyo",
			Temperature: 21.4,
			Condition:   "Clear",
			Humidity:    69,
			WindSpeed:   4.5,
			CapturedAt:  time.Now().Unix(),
			Provenance:  prov,
		}
		require.NoError(t, store.PutAtmospheric(rec))

		got, hit := store.GetAtmospheric("tokyo", time.Hour)
		require.True(t, hit)
		assert.Equal(t, prov, got.Provenance, "reads must not relabel provenance")
	}
}

func TestStoreFreshnessBoundary(t *testing.T) {
	store := newTestStore(t)
	now := time.Unix(1768469400, 0)
	store.SetClockForTest(func() time.Time { return now })
	ttl := 10 * time.Second

	tests := []struct {
		name      string
		age       time.Duration
		wantFresh bool
	}{
		{name: "just captured", age: 0, wantFresh: true},
		{name: "well within ttl", age: 5 * time.Second, wantFresh: true},
		{name: "exactly ttl old", age: ttl, wantFresh: true},
		{name: "one second past ttl", age: ttl + time.Second, wantFresh: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.TemporalRecord{
				City:       "newyork",
				TimeText:   "2026-01-15 04:30:00 EST",
				CapturedAt: now.Add(-tt.age).Unix(),
				Provenance: models.ProvenanceAPI,
			}
			require.NoError(t, store.PutTemporal(rec))

			_, hit := store.GetTemporal("newyork", ttl)
			assert.Equal(t, tt.wantFresh, hit)
		})
	}
}

func TestStoreTTLIsPerCaller(t *testing.T) {
	store := newTestStore(t)

	rec := models.TemporalRecord{
		City:       "london",
		TimeText:   "2026-01-15 09:30:00 GMT",
		CapturedAt: time.Now().Add(-30 * time.Second).Unix(),
		Provenance: models.ProvenanceAPI,
	}
	require.NoError(t, store.PutTemporal(rec))

	// The same row is stale for a short window and fresh for a longer one.
	_, hit := store.GetTemporal("london", 10*time.Second)
	assert.False(t, hit)

	got, hit := store.GetTemporal("london", time.Minute)
	require.True(t, hit)
	assert.Equal(t, rec, got)
}

func TestStoreStaleEntryIsKeptOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	rec := models.TemporalRecord{
		City:       "tokyo",
		TimeText:   "2026-01-15 18:30:00 JST",
		CapturedAt: time.Now().Add(-time.Hour).Unix(),
		Provenance: models.ProvenanceAPI,
	}
	require.NoError(t, store.PutTemporal(rec))

	_, hit := store.GetTemporal("tokyo", time.Second)
	require.False(t, hit)

	// A stale read must not remove the row.
	_, statErr := os.Stat(filepath.Join(dir, "temporal", "tokyo.json"))
	assert.NoError(t, statErr)

	got, hit := store.GetTemporal("tokyo", 2*time.Hour)
	require.True(t, hit)
	assert.Equal(t, rec, got)
}

func TestStoreMissingEntryIsMiss(t *testing.T) {
	store := newTestStore(t)

	_, hit := store.GetTemporal("london", time.Hour)
	assert.False(t, hit)

	_, hit = store.GetAtmospheric("london", time.Hour)
	assert.False(t, hit)
}

func TestStoreCorruptEntryDegradesToMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	path := filepath.Join(dir, "temporal", "london.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, hit := store.GetTemporal("london", time.Hour)
	assert.False(t, hit)

	// The corrupt file is left for a later overwrite to repair.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestStoreCorruptRecordPayloadDegradesToMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	entry := NewEntry("london", models.KindTemporal, "fp", time.Now().Unix(), json.RawMessage(`"not an object"`))
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temporal", "london.json"), data, 0600))

	_, hit := store.GetTemporal("london", time.Hour)
	assert.False(t, hit)
}

func TestStoreOverwriteReplacesRow(t *testing.T) {
	store := newTestStore(t)

	old := models.AtmosphericRecord{
		City: "london", Temperature: 10.0, Condition: "Cloudy",
		Humidity: 70, WindSpeed: 3.5,
		CapturedAt: time.Now().Unix(), Provenance: models.ProvenanceFallback,
	}
	require.NoError(t, store.PutAtmospheric(old))

	replacement := old
	replacement.Temperature = 11.5
	replacement.Provenance = models.ProvenanceAPI
	require.NoError(t, store.PutAtmospheric(replacement))

	got, hit := store.GetAtmospheric("london", time.Hour)
	require.True(t, hit)
	assert.Equal(t, replacement, got)
}

func TestStorePutRejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)

	err := store.PutTemporal(models.TemporalRecord{City: ""})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestStoreEnvelopeCarriesFingerprint(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zerolog.Nop())
	require.NoError(t, err)

	rec := models.TemporalRecord{
		City:       "london",
		TimeText:   "2026-01-15 09:30:00 GMT",
		CapturedAt: 1768469400,
		Provenance: models.ProvenanceAPI,
	}
	require.NoError(t, store.PutTemporal(rec))

	data, err := os.ReadFile(filepath.Join(dir, "temporal", "london.json"))
	require.NoError(t, err)

	var entry Entry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, rec.Fingerprint(), entry.Fingerprint)
	assert.Equal(t, rec.CapturedAt, entry.CapturedAt)
	assert.Equal(t, models.KindTemporal, entry.Kind)
	assert.Equal(t, "london", entry.Key)
}

func TestStorePurge(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().Unix()
	require.NoError(t, store.PutTemporal(models.TemporalRecord{
		City: "london", TimeText: "x", CapturedAt: now, Provenance: models.ProvenanceAPI,
	}))
	require.NoError(t, store.PutAtmospheric(models.AtmosphericRecord{
		City: "london", Temperature: 10, Condition: "Clear",
		Humidity: 65, WindSpeed: 3.5, CapturedAt: now, Provenance: models.ProvenanceAPI,
	}))

	require.NoError(t, store.Purge())

	_, hit := store.GetTemporal("london", time.Hour)
	assert.False(t, hit)
	_, hit = store.GetAtmospheric("london", time.Hour)
	assert.False(t, hit)

	// The store remains usable after a purge.
	require.NoError(t, store.PutTemporal(models.TemporalRecord{
		City: "tokyo", TimeText: "y", CapturedAt: now, Provenance: models.ProvenanceFallback,
	}))
	_, hit = store.GetTemporal("tokyo", time.Hour)
	assert.True(t, hit)
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().Unix()
	require.NoError(t, store.PutTemporal(models.TemporalRecord{
		City: "london", TimeText: "x", CapturedAt: now, Provenance: models.ProvenanceAPI,
	}))
	require.NoError(t, store.PutTemporal(models.TemporalRecord{
		City: "tokyo", TimeText: "y", CapturedAt: now, Provenance: models.ProvenanceAPI,
	}))
	require.NoError(t, store.PutAtmospheric(models.AtmosphericRecord{
		City: "london", Temperature: 10, Condition: "Clear",
		Humidity: 65, WindSpeed: 3.5, CapturedAt: now, Provenance: models.ProvenanceAPI,
	}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries[models.KindTemporal])
	assert.Equal(t, 1, stats.Entries[models.KindAtmospheric])
	assert.Positive(t, stats.TotalBytes)
	assert.Equal(t, store.Directory(), stats.Directory)
}

func TestEntryFreshWithin(t *testing.T) {
	now := time.Unix(1768469400, 0)

	tests := []struct {
		name string
		age  int64
		ttl  time.Duration
		want bool
	}{
		{name: "zero age zero ttl", age: 0, ttl: 0, want: true},
		{name: "age equals ttl", age: 600, ttl: 600 * time.Second, want: true},
		{name: "age exceeds ttl", age: 601, ttl: 600 * time.Second, want: false},
		{name: "future capture", age: -5, ttl: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Entry{CapturedAt: now.Unix() - tt.age}
			assert.Equal(t, tt.want, entry.FreshWithin(tt.ttl, now))
		})
	}
}
