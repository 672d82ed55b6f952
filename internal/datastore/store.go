package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store holds the whole JSON document in memory: top-level keys are collection
// names mapping to ordered arrays of records. Every handler goes through an
// injected *Store; there is no package-level instance.
//
// The original mock ran single-threaded, so it had no locking at all. Go
// serves requests concurrently, so an RWMutex guards the document; reads hand
// out record clones to keep handlers race-free.
type Store struct {
	mu     sync.RWMutex
	path   string
	doc    map[string][]Record
	extras map[string]json.RawMessage
	dirty  bool
	logger *slog.Logger

	flushMu   sync.Mutex
	lastFlush time.Time
}

// Open loads the document at path, or starts from an empty document when the
// file does not exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		doc:    make(map[string][]Record),
		extras: make(map[string]json.RawMessage),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("store file absent, starting empty", "path", path)
			s.dirty = true
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := s.decode(data); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) decode(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse store document: %w", err)
	}

	doc := make(map[string][]Record, len(raw))
	extras := make(map[string]json.RawMessage)
	for name, value := range raw {
		var records []Record
		if err := json.Unmarshal(value, &records); err != nil {
			// non-array top-level values are preserved verbatim on flush
			extras[name] = value
			continue
		}
		doc[name] = records
	}

	s.mu.Lock()
	s.doc = doc
	s.extras = extras
	s.mu.Unlock()
	return nil
}

func (s *Store) Path() string {
	return s.path
}

// Bootstrap makes sure the users and sessions collections exist and seeds the
// default admin account when no user is present.
func (s *Store) Bootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc["sessions"]; !ok {
		s.doc["sessions"] = []Record{}
		s.dirty = true
	}
	if users, ok := s.doc["users"]; !ok || len(users) == 0 {
		s.doc["users"] = []Record{DefaultAdminUser()}
		s.dirty = true
		s.logger.Info("bootstrapped default admin user", "email", "admin@example.com")
	}
}

// DefaultAdminUser is the account created at bootstrap. The password is
// stored in clear, matching the mock this API replaces; the logging
// middleware filters it out of every log line.
func DefaultAdminUser() Record {
	return Record{
		"id":        float64(1),
		"email":     "admin@example.com",
		"password":  "password",
		"name":      "Admin",
		"full_name": "Administrateur RH",
		"roles": []any{
			map[string]any{"id": float64(1), "code": "ADMIN", "libelle": "Administrateur"},
		},
	}
}

// Collections lists the collection names in lexical order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.doc))
	for name := range s.doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.doc[name]
	return ok
}

// EnsureCollection creates an empty collection when absent.
func (s *Store) EnsureCollection(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc[name]; !ok {
		s.doc[name] = []Record{}
		s.dirty = true
	}
}

func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc[name])
}

// All returns clones of every record of a collection in insertion order.
func (s *Store) All(name string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.doc[name]
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// Find returns the record whose id matches, by linear scan.
func (s *Store) Find(name string, id any) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.doc[name] {
		if IDEqual(rec.ID(), id) {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// FindBy returns the first record matching pred.
func (s *Store) FindBy(name string, pred func(Record) bool) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.doc[name] {
		if pred(rec) {
			return rec.Clone(), true
		}
	}
	return nil, false
}

// FilterBy returns clones of every record matching pred, in insertion order.
func (s *Store) FilterBy(name string, pred func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.doc[name] {
		if pred(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// NewID is the default id generator: current Unix time in milliseconds. Two
// inserts within the same millisecond can collide; the original mock carries
// the same risk and the seed data never relies on generated ids.
func NewID() float64 {
	return float64(time.Now().UnixMilli())
}

// Insert appends a record, assigning a timestamp id when none is present, and
// returns a clone of the stored record.
func (s *Store) Insert(name string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec.Clone()
	if stored == nil {
		stored = Record{}
	}
	if stored["id"] == nil {
		stored["id"] = NewID()
	}
	s.doc[name] = append(s.doc[name], stored)
	s.dirty = true
	return stored.Clone()
}

// Update shallow-merges patch into the record with the given id.
func (s *Store) Update(name string, id any, patch Record) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.doc[name] {
		if IDEqual(rec.ID(), id) {
			rec.Merge(patch)
			s.dirty = true
			return rec.Clone(), true
		}
	}
	return nil, false
}

// UpdateWhere mutates the first record matching pred in place. Used for
// session token rotation, where the lookup key is itself being replaced.
func (s *Store) UpdateWhere(name string, pred func(Record) bool, mutate func(Record)) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.doc[name] {
		if pred(rec) {
			mutate(rec)
			s.dirty = true
			return rec.Clone(), true
		}
	}
	return nil, false
}

// Delete removes the record with the given id and returns it.
func (s *Store) Delete(name string, id any) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.doc[name]
	for i, rec := range records {
		if IDEqual(rec.ID(), id) {
			s.doc[name] = append(records[:i], records[i+1:]...)
			s.dirty = true
			return rec, true
		}
	}
	return nil, false
}

// Stats reports per-collection record counts, for the health endpoint.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(map[string]int, len(s.doc))
	for name, records := range s.doc {
		stats[name] = len(records)
	}
	return stats
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the document back to disk atomically (temp file + rename).
// No-op when nothing changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}

	merged := make(map[string]any, len(s.doc)+len(s.extras))
	for name, records := range s.doc {
		merged[name] = records
	}
	for name, raw := range s.extras {
		merged[name] = raw
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode store document: %w", err)
	}
	s.dirty = false
	s.mu.Unlock()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.markDirty()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.markDirty()
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	s.lastFlush = time.Now()
	return nil
}

func (s *Store) markDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *Store) sinceLastFlush() time.Duration {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.lastFlush.IsZero() {
		return time.Hour
	}
	return time.Since(s.lastFlush)
}

// StartFlusher periodically writes dirty state back to the file until ctx is
// cancelled, then performs a final flush.
func (s *Store) StartFlusher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				s.logger.Error("store flush failed", "error", err)
			}
		case <-ctx.Done():
			if err := s.Flush(); err != nil {
				s.logger.Error("final store flush failed", "error", err)
			}
			return
		}
	}
}

// Reload re-reads the document from disk, replacing the in-memory state.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to re-read store file: %w", err)
	}
	if err := s.decode(data); err != nil {
		return err
	}
	s.logger.Info("store reloaded from disk", "path", filepath.Base(s.path))
	return nil
}
