package store

import (
	"sync"
	"time"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
)

var (
	// ErrNotFound is returned when no fresh series is cached for a key.
	ErrNotFound = dashboard.ErrNotFound
)

type entry struct {
	result  dashboard.SeriesResult
	savedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory series cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: window@coordinates, value: cached series
	data  map[string]entry
	order []string // keys, oldest save first

	// retention configuration
	maxEntries int           // max number of cached series
	maxAge     time.Duration // optional max age of an entry

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSeries stores a series under key and enforces retention.
func (s *MemoryStore) SaveSeries(key string, result dashboard.SeriesResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		s.removeFromOrder(key)
	}
	s.data[key] = entry{result: result, savedAt: s.now()}
	s.order = append(s.order, key)

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.order); i++ {
			if !s.data[s.order[i]].savedAt.Before(cutoff) {
				break
			}
			delete(s.data, s.order[i])
		}
		s.order = s.order[i:]
	}

	// Enforce retention by count.
	if s.maxEntries > 0 && len(s.order) > s.maxEntries {
		over := len(s.order) - s.maxEntries
		for _, k := range s.order[:over] {
			delete(s.data, k)
		}
		s.order = s.order[over:]
	}

	return nil
}

// GetLatest returns the cached series for key if it has not expired.
func (s *MemoryStore) GetLatest(key string) (dashboard.SeriesResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return dashboard.SeriesResult{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(e.savedAt) > s.maxAge {
		return dashboard.SeriesResult{}, ErrNotFound
	}
	return e.result, nil
}

// Len returns the number of cached entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
