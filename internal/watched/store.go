// Package watched keeps the user's rated watched list and persists it to a
// single storage slot.
package watched

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// DefaultKey is the slot the watched list is stored under.
const DefaultKey = "watched"

var (
	ErrIDRequired     = errors.New("id is required")
	ErrAlreadyWatched = errors.New("movie is already on the watched list")
)

// Store manages an ordered list of watched entries, unique by id.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	entries []Entry
	log     *slog.Logger
}

// Open reads the list stored under key. Missing or corrupt data yields an
// empty list; the problem is logged and never returned.
func Open(storage Storage, key string, logger *slog.Logger) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		storage: storage,
		key:     key,
		log:     logger.With("component", "watched", "key", key),
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []Entry {
	data, err := s.storage.Get(s.key)
	if errors.Is(err, ErrNoData) {
		return []Entry{}
	}
	if err != nil {
		s.log.Warn("watched list unreadable, starting empty", "error", err)
		return []Entry{}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Entry{}
	}

	var stored []Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("watched list corrupt, starting empty", "error", err)
		return []Entry{}
	}

	entries := make([]Entry, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, e := range stored {
		e.ID = strings.TrimSpace(e.ID)
		if !e.valid() {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			s.log.Warn("dropping duplicate watched entry", "id", e.ID)
			continue
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}

	s.log.Debug("watched list loaded", "entries", len(entries))
	return entries
}

// List returns a copy of the entries in insertion order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of watched movies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the entry for id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Contains reports whether id is on the list.
func (s *Store) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Add appends e and persists the list. An id already on the list is
// rejected with ErrAlreadyWatched.
func (s *Store) Add(e Entry) error {
	e.ID = strings.TrimSpace(e.ID)
	if !e.valid() {
		return ErrIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(e.ID) >= 0 {
		return ErrAlreadyWatched
	}

	prev := s.entries
	next := make([]Entry, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, e)

	s.entries = next
	if err := s.saveLocked(); err != nil {
		s.entries = prev
		return err
	}

	s.log.Info("added to watched list", "id", e.ID, "title", e.Title, "userRating", e.UserRating)
	return nil
}

// Remove deletes the entry for id. It reports false, without touching
// storage, when id is not on the list.
func (s *Store) Remove(id string) (bool, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}

	prev := s.entries
	next := make([]Entry, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)

	s.entries = next
	if err := s.saveLocked(); err != nil {
		s.entries = prev
		return false, err
	}

	s.log.Info("removed from watched list", "id", id)
	return true, nil
}

// Reset empties the list and clears its storage slot.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Clear(s.key); err != nil {
		return fmt.Errorf("reset watched list: %w", err)
	}
	s.entries = []Entry{}
	s.log.Info("watched list reset")
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode watched list: %w", err)
	}
	if err := s.storage.Set(s.key, data); err != nil {
		return fmt.Errorf("persist watched list: %w", err)
	}
	return nil
}
