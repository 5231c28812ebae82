package atmospheric

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/treellis/worldmatrix/internal/cache"
	"github.com/treellis/worldmatrix/internal/models"
	"github.com/treellis/worldmatrix/internal/registry"
)

// Service resolves current weather for a city. Tier order is fixed: fresh
// cache row, then the remote weather API, then local synthesis. A missing
// credential leaves api nil, which disables the network tier outright
// instead of erroring per call. A known city always resolves.
type Service struct {
	registry *registry.Registry
	store    *cache.Store
	api      ConditionsSource
	units    models.UnitSystem
	ttl      time.Duration
	clock    func() time.Time
	log      zerolog.Logger
}

// NewService wires an atmospheric resolver. api may be nil.
func NewService(reg *registry.Registry, store *cache.Store, api ConditionsSource, units models.UnitSystem, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		registry: reg,
		store:    store,
		api:      api,
		units:    units,
		ttl:      ttl,
		clock:    time.Now,
		log:      log.With().Str("component", "atmospheric").Logger(),
	}
}

// SetClockForTest replaces the wall clock used for capture timestamps and
// for the synthesizer's month and hour inputs.
func (s *Service) SetClockForTest(clock func() time.Time) {
	s.clock = clock
}

// Resolve returns the current weather record for cityID.
func (s *Service) Resolve(ctx context.Context, cityID string) (models.AtmosphericRecord, error) {
	profile, ok := s.registry.Lookup(cityID)
	if !ok {
		return models.AtmosphericRecord{}, fmt.Errorf("%w: %q", registry.ErrUnknownCity, cityID)
	}

	if rec, hit := s.store.GetAtmospheric(cityID, s.ttl); hit {
		s.log.Debug().Str("city", cityID).Str("provenance", string(rec.Provenance)).Msg("atmospheric cache hit")
		return rec, nil
	}

	if s.api != nil {
		obs, err := s.api.Current(ctx, profile, s.units)
		if err == nil {
			rec := s.record(cityID, obs, models.ProvenanceAPI)
			s.persist(rec)
			return rec, nil
		}
		s.log.Debug().Err(err).Str("city", cityID).Msg("weather API unavailable, synthesizing conditions")
	}

	// Synthesis uses the city's local month and hour so the fabricated
	// weather tracks its seasons, not the host's.
	local := s.clock().In(s.location(profile))
	obs := Synthesize(cityID, local.Month(), local.Hour(), s.units)
	rec := s.record(cityID, obs, models.ProvenanceFallback)
	s.persist(rec)
	return rec, nil
}

func (s *Service) record(cityID string, obs Observation, prov models.Provenance) models.AtmosphericRecord {
	return models.AtmosphericRecord{
		City:        cityID,
		Temperature: obs.Temperature,
		Condition:   obs.Condition,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
		CapturedAt:  s.clock().Unix(),
		Provenance:  prov,
	}
}

// persist writes the record through to the store, logging instead of failing
// when the write cannot land.
func (s *Service) persist(rec models.AtmosphericRecord) {
	if err := s.store.PutAtmospheric(rec); err != nil {
		s.log.Warn().Err(err).Str("city", rec.City).Msg("failed to persist atmospheric record")
	}
}

func (s *Service) location(profile registry.Profile) *time.Location {
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		s.log.Warn().Err(err).
			Str("city", profile.ID).
			Str("timezone", profile.Timezone).
			Msg("unknown time zone, synthesizing from UTC")
		return time.UTC
	}
	return loc
}
