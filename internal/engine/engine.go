// Package engine orchestrates per-city acquisition: it fans a snapshot
// request out across the temporal and atmospheric resolvers and assembles the
// per-city reports the presentation layers render.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/treellis/worldmatrix/internal/models"
	"github.com/treellis/worldmatrix/internal/registry"
)

// snapshotConcurrency bounds the number of cities resolved in parallel.
const snapshotConcurrency = 4

// TemporalResolver yields the current local-time record for a city.
type TemporalResolver interface {
	Resolve(ctx context.Context, cityID string) (models.TemporalRecord, error)
}

// AtmosphericResolver yields the current weather record for a city.
type AtmosphericResolver interface {
	Resolve(ctx context.Context, cityID string) (models.AtmosphericRecord, error)
}

// CityReport pairs one city's resolved records with its profile.
type CityReport struct {
	Profile registry.Profile
	Time    models.TemporalRecord
	Weather models.AtmosphericRecord
}

// Engine resolves snapshots against a fixed city registry.
type Engine struct {
	registry    *registry.Registry
	temporal    TemporalResolver
	atmospheric AtmosphericResolver
	log         zerolog.Logger
}

// New builds an engine over the given registry and resolvers.
func New(reg *registry.Registry, temporal TemporalResolver, atmospheric AtmosphericResolver, log zerolog.Logger) *Engine {
	return &Engine{
		registry:    reg,
		temporal:    temporal,
		atmospheric: atmospheric,
		log:         log.With().Str("component", "engine").Logger(),
	}
}

// Snapshot resolves the named cities and returns their reports in input
// order. An empty id list means the full registry. Every id is validated
// against the registry before any resolution starts, so a single bad id
// costs no I/O. Cities resolve concurrently under a bounded pool; each city
// only ever touches its own cache keys, so parallel resolutions cannot
// interfere.
func (e *Engine) Snapshot(ctx context.Context, ids []string) ([]CityReport, error) {
	if len(ids) == 0 {
		ids = e.registry.IDs()
	}

	profiles := make([]registry.Profile, len(ids))
	for i, id := range ids {
		profile, ok := e.registry.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", registry.ErrUnknownCity, id)
		}
		profiles[i] = profile
	}

	e.log.Debug().
		Str("operation", "snapshot").
		Int("cities", len(ids)).
		Msg("acquiring snapshot")

	reports := make([]CityReport, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)

	for i := range ids {
		g.Go(func() error {
			timeRec, err := e.temporal.Resolve(gCtx, ids[i])
			if err != nil {
				return fmt.Errorf("resolving time for %s: %w", ids[i], err)
			}
			weatherRec, err := e.atmospheric.Resolve(gCtx, ids[i])
			if err != nil {
				return fmt.Errorf("resolving weather for %s: %w", ids[i], err)
			}
			reports[i] = CityReport{Profile: profiles[i], Time: timeRec, Weather: weatherRec}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
