package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treellis/worldmatrix/internal/models"
	"github.com/treellis/worldmatrix/internal/registry"
)

// stubTemporal records which cities were resolved. Safe for concurrent use;
// Snapshot resolves cities in parallel.
type stubTemporal struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubTemporal) Resolve(_ context.Context, cityID string) (models.TemporalRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cityID)
	s.mu.Unlock()
	if s.err != nil {
		return models.TemporalRecord{}, s.err
	}
	return models.TemporalRecord{
		City:       cityID,
		TimeText:   "2026-01-15 12:00:00 GMT",
		CapturedAt: 1,
		Provenance: models.ProvenanceAPI,
	}, nil
}

func (s *stubTemporal) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubAtmospheric struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubAtmospheric) Resolve(_ context.Context, cityID string) (models.AtmosphericRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cityID)
	s.mu.Unlock()
	if s.err != nil {
		return models.AtmosphericRecord{}, s.err
	}
	return models.AtmosphericRecord{
		City:        cityID,
		Temperature: 12.6,
		Condition:   "Light Rain",
		Humidity:    79,
		WindSpeed:   4.5,
		CapturedAt:  1,
		Provenance:  models.ProvenanceFallback,
	}, nil
}

func newEngineFixture(temporal *stubTemporal, atmospheric *stubAtmospheric) *Engine {
	return New(registry.Default(), temporal, atmospheric, zerolog.Nop())
}

func TestSnapshotReturnsReportsInInputOrder(t *testing.T) {
	temporal := &stubTemporal{}
	atmospheric := &stubAtmospheric{}
	eng := newEngineFixture(temporal, atmospheric)

	reports, err := eng.Snapshot(context.Background(), []string{"tokyo", "london"})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "tokyo", reports[0].Profile.ID)
	assert.Equal(t, "london", reports[1].Profile.ID)
	assert.Equal(t, "tokyo", reports[0].Time.City)
	assert.Equal(t, "london", reports[1].Weather.City)
	assert.Equal(t, "Tokyo", reports[0].Profile.DisplayName)
}

func TestSnapshotDefaultsToFullRegistry(t *testing.T) {
	temporal := &stubTemporal{}
	atmospheric := &stubAtmospheric{}
	eng := newEngineFixture(temporal, atmospheric)

	reports, err := eng.Snapshot(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	var ids []string
	for _, report := range reports {
		ids = append(ids, report.Profile.ID)
	}
	assert.Equal(t, registry.Default().IDs(), ids, "an empty request covers the registry in order")
}

func TestSnapshotUnknownCityPrecedesResolution(t *testing.T) {
	temporal := &stubTemporal{}
	atmospheric := &stubAtmospheric{}
	eng := newEngineFixture(temporal, atmospheric)

	_, err := eng.Snapshot(context.Background(), []string{"london", "atlantis"})
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrUnknownCity)
	assert.Zero(t, temporal.callCount(), "validation must complete before any resolution starts")
}

func TestSnapshotSurfacesTemporalErrors(t *testing.T) {
	temporal := &stubTemporal{err: errors.New("store exploded")}
	atmospheric := &stubAtmospheric{}
	eng := newEngineFixture(temporal, atmospheric)

	_, err := eng.Snapshot(context.Background(), []string{"london"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving time for london")
}

func TestSnapshotSurfacesAtmosphericErrors(t *testing.T) {
	temporal := &stubTemporal{}
	atmospheric := &stubAtmospheric{err: errors.New("store exploded")}
	eng := newEngineFixture(temporal, atmospheric)

	_, err := eng.Snapshot(context.Background(), []string{"tokyo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving weather for tokyo")
}
