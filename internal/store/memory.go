// Package store keeps recent dashboard snapshots in memory. The service
// reads the newest one as its TTL cache and the history endpoint reads
// ranges.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/atmosphere/internal/weather"
)

// ErrNotFound means no snapshot matched the location (or range).
var ErrNotFound = errors.New("no weather data for location")

// MemoryStore holds snapshots per location key, oldest first.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]weather.Snapshot

	maxHistory int           // <= 0: unlimited
	maxAge     time.Duration // <= 0: unlimited
	now        func() time.Time
}

func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		snapshots:  make(map[string][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records snapshot under loc and trims that location's history.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[key] = s.prune(append(s.snapshots[key], snapshot))
}

// prune applies the count limit, then drops snapshots older than maxAge.
// The newest snapshot survives both.
func (s *MemoryStore) prune(snaps []weather.Snapshot) []weather.Snapshot {
	if s.maxHistory > 0 && len(snaps) > s.maxHistory {
		snaps = snaps[len(snaps)-s.maxHistory:]
	}
	if s.maxAge <= 0 {
		return snaps
	}

	cutoff := s.now().Add(-s.maxAge)
	last := len(snaps) - 1
	drop := 0
	for drop < last && snaps[drop].FetchedAt.Before(cutoff) {
		drop++
	}
	return snaps[drop:]
}

func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.snapshots[loc.Key()]
	if len(snaps) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

// GetRange returns the snapshots fetched within [from, to].
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.Snapshot
	for _, snap := range s.snapshots[loc.Key()] {
		if snap.FetchedAt.Before(from) || snap.FetchedAt.After(to) {
			continue
		}
		out = append(out, snap)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
