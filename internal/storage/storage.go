// Package storage keeps completed extraction results in memory just long
// enough for the browser to fetch the export it was offered. Nothing is
// persisted; the store dies with the process.
package storage

import (
	"sync"
	"time"

	"github.com/aircargo-labs/awb-extractor/internal/extract"
)

// Entry is one stored run.
type Entry struct {
	Result    *extract.Result
	CreatedAt time.Time
}

type ResultStore struct {
	results map[string]*Entry
	mu      sync.RWMutex
}

func New() *ResultStore {
	return &ResultStore{
		results: make(map[string]*Entry),
	}
}

func (s *ResultStore) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.results[id]
	return entry, exists
}

func (s *ResultStore) Set(id string, result *extract.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = &Entry{Result: result, CreatedAt: time.Now()}
}

func (s *ResultStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
}

// Prune drops entries older than maxAge and returns how many were removed.
func (s *ResultStore) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, entry := range s.results {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.results, id)
			removed++
		}
	}
	return removed
}
