// Package cache persists acquisition records between runs: one JSON file per
// (kind, city) key under the state directory, with freshness decided at read
// time against the caller's TTL. Stale entries stay on disk until they are
// overwritten or explicitly purged.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/treellis/worldmatrix/internal/models"
)

// entryFileExtension is the file extension used for cache entries.
const entryFileExtension = ".json"

// ErrInvalidKey reports a put with an empty city key.
var ErrInvalidKey = errors.New("cache key cannot be empty")

// kinds are the record tables the store maintains, one subdirectory each.
var kinds = []models.Kind{models.KindTemporal, models.KindAtmospheric}

// Store provides file-based persistence for temporal and atmospheric
// records. Writes replace whole rows atomically; reads never modify the
// store, and any read failure (missing file, unreadable file, corrupt JSON)
// degrades to a miss so resolution can continue through the remaining tiers.
// Thread-safe for concurrent access.
type Store struct {
	// directory is the cache root; each kind gets a subdirectory.
	directory string

	log   zerolog.Logger
	clock func() time.Time

	// mu protects concurrent access to file operations.
	mu sync.RWMutex
}

// NewStore creates a store rooted at directory, creating the per-kind
// subdirectories. A failure here is fatal to the caller: without a store
// there is nowhere to persist acquisitions.
func NewStore(directory string, log zerolog.Logger) (*Store, error) {
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	s := &Store{
		directory: directory,
		log:       log.With().Str("component", "cache").Logger(),
		clock:     time.Now,
	}
	if err := s.createKindDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetClockForTest replaces the wall clock used for freshness checks.
func (s *Store) SetClockForTest(clock func() time.Time) {
	s.clock = clock
}

func (s *Store) createKindDirs() error {
	for _, kind := range kinds {
		if err := os.MkdirAll(s.kindDir(kind), 0750); err != nil {
			return fmt.Errorf("failed to create cache directory for %s records: %w", kind, err)
		}
	}
	return nil
}

// GetTemporal returns the stored temporal record for city if it was captured
// no more than ttl ago. The record keeps the provenance it was stored with.
func (s *Store) GetTemporal(city string, ttl time.Duration) (models.TemporalRecord, bool) {
	var rec models.TemporalRecord
	if !s.get(models.KindTemporal, city, ttl, &rec) {
		return models.TemporalRecord{}, false
	}
	return rec, true
}

// GetAtmospheric returns the stored atmospheric record for city if it was
// captured no more than ttl ago.
func (s *Store) GetAtmospheric(city string, ttl time.Duration) (models.AtmosphericRecord, bool) {
	var rec models.AtmosphericRecord
	if !s.get(models.KindAtmospheric, city, ttl, &rec) {
		return models.AtmosphericRecord{}, false
	}
	return rec, true
}

// PutTemporal stores rec under its city key, computing the content
// fingerprint for the envelope. An existing row is overwritten.
func (s *Store) PutTemporal(rec models.TemporalRecord) error {
	return s.put(models.KindTemporal, rec.City, rec.Fingerprint(), rec.CapturedAt, rec)
}

// PutAtmospheric stores rec under its city key.
func (s *Store) PutAtmospheric(rec models.AtmosphericRecord) error {
	return s.put(models.KindAtmospheric, rec.City, rec.Fingerprint(), rec.CapturedAt, rec)
}

// get loads the entry for (kind, city), applies the freshness window, and
// decodes the record into out. Every failure mode is a miss: stale rows are
// left in place for a later caller with a longer ttl.
func (s *Store) get(kind models.Kind, city string, ttl time.Duration, out any) bool {
	if city == "" {
		return false
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.entryPath(kind, city))
	s.mu.RUnlock()
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).
				Str("kind", string(kind)).
				Str("city", city).
				Msg("cache read failed, treating as miss")
		}
		return false
	}

	var entry Entry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		s.log.Warn().Err(unmarshalErr).
			Str("kind", string(kind)).
			Str("city", city).
			Msg("cache entry corrupt, treating as miss")
		return false
	}

	if !entry.FreshWithin(ttl, s.clock()) {
		return false
	}

	if unmarshalErr := json.Unmarshal(entry.Record, out); unmarshalErr != nil {
		s.log.Warn().Err(unmarshalErr).
			Str("kind", string(kind)).
			Str("city", city).
			Msg("cache record corrupt, treating as miss")
		return false
	}
	return true
}

// put encodes rec into an envelope and writes it atomically.
func (s *Store) put(kind models.Kind, city, fingerprint string, capturedAt int64, rec any) error {
	if city == "" {
		return ErrInvalidKey
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record for %s: %w", kind, city, err)
	}

	entry := NewEntry(city, kind, fingerprint, capturedAt, payload)
	entryData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.entryPath(kind, city)

	// Write to temporary file first, then rename for atomicity
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}

	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath) // Clean up temp file on error
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Purge removes every stored entry of both kinds and recreates the empty
// kind directories. It is only reachable through explicit maintenance
// commands; the resolution path never deletes rows.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range kinds {
		if err := os.RemoveAll(s.kindDir(kind)); err != nil {
			return fmt.Errorf("failed to purge %s records: %w", kind, err)
		}
	}
	return s.createKindDirs()
}

// Stats describes the store contents for maintenance output.
type Stats struct {
	Directory  string
	Entries    map[models.Kind]int
	TotalBytes int64
}

// Stats counts the stored entries per kind, including stale ones.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Directory: s.directory,
		Entries:   make(map[models.Kind]int, len(kinds)),
	}
	for _, kind := range kinds {
		entries, err := os.ReadDir(s.kindDir(kind))
		if err != nil {
			return Stats{}, fmt.Errorf("failed to read cache directory: %w", err)
		}
		for _, dirEntry := range entries {
			if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != entryFileExtension {
				continue
			}
			stats.Entries[kind]++
			if info, infoErr := dirEntry.Info(); infoErr == nil {
				stats.TotalBytes += info.Size()
			}
		}
	}
	return stats, nil
}

// Directory returns the cache root path.
func (s *Store) Directory() string {
	return s.directory
}

func (s *Store) kindDir(kind models.Kind) string {
	return filepath.Join(s.directory, string(kind))
}

// entryPath converts a city key to a file path, sanitized for filesystem
// safety.
func (s *Store) entryPath(kind models.Kind, city string) string {
	safeKey := strings.ReplaceAll(city, "/", "_")
	safeKey = strings.ReplaceAll(safeKey, "\\", "_")
	safeKey = strings.ReplaceAll(safeKey, ":", "_")
	return filepath.Join(s.kindDir(kind), safeKey+entryFileExtension)
}
