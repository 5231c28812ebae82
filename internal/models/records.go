// Package models defines the record types shared by the acquisition
// services, the cache store, and the rendering layers.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Provenance records which tier produced a value: a persisted cache re-read,
// a live remote call, or local synthesis. A cache hit returns the provenance
// the record was stored with; re-reading never relabels it.
type Provenance string

// Provenance values are serialized into cache rows and the raw JSON feed and
// must stay stable across releases.
const (
	ProvenanceCache    Provenance = "cache"
	ProvenanceAPI      Provenance = "api"
	ProvenanceFallback Provenance = "fallback"
)

// Kind names one of the two record tables kept by the cache store.
type Kind string

const (
	KindTemporal    Kind = "temporal"
	KindAtmospheric Kind = "atmospheric"
)

// TemporalRecord is the resolved local-time report for one city. CapturedAt
// is the Unix second the value was acquired, and is what freshness checks
// compare against.
type TemporalRecord struct {
	City       string     `json:"city"`
	TimeText   string     `json:"time_text"`
	CapturedAt int64      `json:"captured_at"`
	Provenance Provenance `json:"provenance"`
}

// Fingerprint digests the record's content fields. Identical content always
// produces an identical fingerprint; provenance is deliberately excluded so
// a cache round trip cannot change it.
func (r TemporalRecord) Fingerprint() string {
	return digest(fmt.Sprintf("%s|%s|%d", r.City, r.TimeText, r.CapturedAt))
}

// AtmosphericRecord is the resolved weather report for one city. Temperature
// and wind speed carry whichever unit system was active when the record was
// acquired.
type AtmosphericRecord struct {
	City        string     `json:"city"`
	Temperature float64    `json:"temperature"`
	Condition   string     `json:"condition"`
	Humidity    int        `json:"humidity"`
	WindSpeed   float64    `json:"wind_speed"`
	CapturedAt  int64      `json:"captured_at"`
	Provenance  Provenance `json:"provenance"`
}

// Fingerprint digests the record's content fields, excluding provenance.
func (r AtmosphericRecord) Fingerprint() string {
	return digest(fmt.Sprintf("%s|%.1f|%s|%d|%.1f|%d",
		r.City, r.Temperature, r.Condition, r.Humidity, r.WindSpeed, r.CapturedAt))
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
