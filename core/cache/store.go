package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/folio-dev/folio/core/logger"
)

// FormatVersion is bumped whenever the persisted cache layout changes.
const FormatVersion = 1

// ErrCorrupt marks an unreadable or invalid persisted cache. The store
// recovers by starting empty; callers surface a warning and continue.
var ErrCorrupt = errors.New("cache file corrupt")

// Entry is one cached computation result, keyed by a caller-defined target
// identifier such as "process:<path>".
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	ContentHash string    `json:"content_hash"`
	ComputedAt  time.Time `json:"computed_at"`
	Result      string    `json:"result"`
}

// Store is a persistent targetId -> entry map. It is loaded once at pipeline
// start and saved once at pipeline end; it assumes exclusive ownership of the
// cache file for the duration of a run. Entries are never pruned implicitly.
type Store struct {
	path    string
	mutex   sync.RWMutex
	entries map[string]*Entry
	order   []string
	hits    int64
	misses  int64
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry for targetID, if present.
func (s *Store) Get(targetID string) (*Entry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.entries[targetID]
	if exists {
		s.hits++
	} else {
		s.misses++
	}
	return entry, exists
}

// Put stores an entry, preserving first-insertion order for persistence.
func (s *Store) Put(targetID string, entry *Entry) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.entries[targetID]; !exists {
		s.order = append(s.order, targetID)
	}
	s.entries[targetID] = entry
}

// Remove deletes an entry.
func (s *Store) Remove(targetID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.entries[targetID]; !exists {
		return
	}
	delete(s.entries, targetID)
	for i, id := range s.order {
		if id == targetID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// Stats reports lookup counters since the store was created.
func (s *Store) Stats() (hits, misses int64) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.hits, s.misses
}

// Clear drops all entries in memory. The cache file is rewritten on the next
// Save.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries = make(map[string]*Entry)
	s.order = nil
}

// Reset clears the store and removes the cache file.
func (s *Store) Reset() error {
	s.Clear()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file %s: %w", s.path, err)
	}
	return nil
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

type entryPair struct {
	ID    string
	Entry Entry
}

func (p entryPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.ID, p.Entry})
}

func (p *entryPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Entry)
}

type cacheFile struct {
	Version     int         `json:"version"`
	GeneratedAt time.Time   `json:"generated_at"`
	Entries     []entryPair `json:"entries"`
}

// Load reads the cache file. A missing file yields an empty cache and nil
// error; an unreadable or invalid file yields an empty cache and an error
// wrapping ErrCorrupt so the caller can warn and proceed as a cold run.
func (s *Store) Load() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries = make(map[string]*Entry)
	s.order = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Store: no cache file at %s, starting cold", s.path)
			return nil
		}
		return fmt.Errorf("%s unreadable (%v): %w", s.path, err, ErrCorrupt)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%s invalid (%v): %w", s.path, err, ErrCorrupt)
	}
	if file.Version != FormatVersion {
		return fmt.Errorf("%s has unsupported version %d: %w", s.path, file.Version, ErrCorrupt)
	}

	for _, pair := range file.Entries {
		entry := pair.Entry
		if _, exists := s.entries[pair.ID]; !exists {
			s.order = append(s.order, pair.ID)
		}
		s.entries[pair.ID] = &entry
	}
	logger.Debug("Store: loaded %d entries from %s", len(s.entries), s.path)
	return nil
}

// Save writes all entries to the cache file in insertion order. Invoked once
// at the end of a pipeline run, not per entry.
func (s *Store) Save() error {
	s.mutex.RLock()
	file := cacheFile{
		Version:     FormatVersion,
		GeneratedAt: time.Now(),
		Entries:     make([]entryPair, 0, len(s.entries)),
	}
	for _, id := range s.order {
		file.Entries = append(file.Entries, entryPair{ID: id, Entry: *s.entries[id]})
	}
	s.mutex.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", s.path, err)
	}
	logger.Debug("Store: saved %d entries to %s", len(file.Entries), s.path)
	return nil
}
