package cache

import (
	"encoding/json"
	"time"

	"github.com/treellis/worldmatrix/internal/models"
)

// Entry is the on-disk envelope around one persisted record.
type Entry struct {
	// Key is the canonical city identifier the record was stored under.
	Key string `json:"key"`

	// Kind names the table the entry belongs to.
	Kind models.Kind `json:"kind"`

	// Fingerprint is the content digest computed when the record was stored.
	// It is bookkeeping for integrity checks and debugging; reads do not
	// verify it.
	Fingerprint string `json:"fingerprint"`

	// CapturedAt mirrors the record's acquisition second. Freshness is
	// decided against this value, never against StoredAt.
	CapturedAt int64 `json:"captured_at"`

	// StoredAt is when the envelope was written.
	StoredAt time.Time `json:"stored_at"`

	// Record is the encoded record payload.
	Record json.RawMessage `json:"record"`
}

// NewEntry wraps an encoded record in its storage envelope.
func NewEntry(key string, kind models.Kind, fingerprint string, capturedAt int64, record json.RawMessage) Entry {
	return Entry{
		Key:         key,
		Kind:        kind,
		Fingerprint: fingerprint,
		CapturedAt:  capturedAt,
		StoredAt:    time.Now().UTC(),
		Record:      record,
	}
}

// FreshWithin reports whether the record was captured no more than ttl
// before now. The comparison is inclusive: a record exactly ttl old is still
// fresh. Staleness is relative to the caller's ttl, so the same entry can be
// fresh for one caller and stale for another.
func (e Entry) FreshWithin(ttl time.Duration, now time.Time) bool {
	age := now.Unix() - e.CapturedAt
	return age <= int64(ttl/time.Second)
}
