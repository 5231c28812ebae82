package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/treellis/worldmatrix/internal/cache"
	"github.com/treellis/worldmatrix/internal/models"
	"github.com/treellis/worldmatrix/internal/registry"
)

// TimeTextLayout renders a localized instant with its zone abbreviation.
// This is the one canonical shape for time text: every tier formats with it,
// and cache rows persist it verbatim.
const TimeTextLayout = "2006-01-02 15:04:05 MST"

// Service resolves the current local time for a city. Tier order is fixed:
// fresh cache row, then the remote time API, then the local clock rendered
// into the city's zone. A known city always resolves; the only error a
// caller can see is asking for a city outside the registry.
type Service struct {
	registry *registry.Registry
	store    *cache.Store
	api      InstantSource
	ttl      time.Duration
	clock    func() time.Time
	log      zerolog.Logger
}

// NewService wires a temporal resolver. api may be nil, which disables the
// network tier so resolution goes straight from cache miss to local clock.
func NewService(reg *registry.Registry, store *cache.Store, api InstantSource, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		registry: reg,
		store:    store,
		api:      api,
		ttl:      ttl,
		clock:    time.Now,
		log:      log.With().Str("component", "temporal").Logger(),
	}
}

// SetClockForTest replaces the wall clock used for capture timestamps and
// the fallback tier.
func (s *Service) SetClockForTest(clock func() time.Time) {
	s.clock = clock
}

// Resolve returns the current local-time record for cityID.
func (s *Service) Resolve(ctx context.Context, cityID string) (models.TemporalRecord, error) {
	profile, ok := s.registry.Lookup(cityID)
	if !ok {
		return models.TemporalRecord{}, fmt.Errorf("%w: %q", registry.ErrUnknownCity, cityID)
	}

	if rec, hit := s.store.GetTemporal(cityID, s.ttl); hit {
		// Hits keep the provenance the record was stored with.
		s.log.Debug().Str("city", cityID).Str("provenance", string(rec.Provenance)).Msg("temporal cache hit")
		return rec, nil
	}

	loc := s.location(profile)

	if s.api != nil {
		instant, err := s.api.CurrentTime(ctx, profile.Timezone)
		if err == nil {
			rec := models.TemporalRecord{
				City:       cityID,
				TimeText:   instant.In(loc).Format(TimeTextLayout),
				CapturedAt: s.clock().Unix(),
				Provenance: models.ProvenanceAPI,
			}
			s.persist(rec)
			return rec, nil
		}
		s.log.Debug().Err(err).Str("city", cityID).Msg("time API unavailable, falling back to local clock")
	}

	rec := models.TemporalRecord{
		City:       cityID,
		TimeText:   s.clock().In(loc).Format(TimeTextLayout),
		CapturedAt: s.clock().Unix(),
		Provenance: models.ProvenanceFallback,
	}
	s.persist(rec)
	return rec, nil
}

// persist writes the record through to the store. A failed write only costs
// future cache hits, so it is logged and the fresh value is served anyway.
func (s *Service) persist(rec models.TemporalRecord) {
	if err := s.store.PutTemporal(rec); err != nil {
		s.log.Warn().Err(err).Str("city", rec.City).Msg("failed to persist temporal record")
	}
}

// location resolves the profile's zone, falling back to UTC when the zone
// database has no entry for it.
func (s *Service) location(profile registry.Profile) *time.Location {
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		s.log.Warn().Err(err).
			Str("city", profile.ID).
			Str("timezone", profile.Timezone).
			Msg("unknown time zone, rendering in UTC")
		return time.UTC
	}
	return loc
}
