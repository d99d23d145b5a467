// Package store keeps finished scan results in memory for retrieval by id.
package store

import (
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/metrics"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

const (
	DefaultCapacity = 1000
	DefaultTTL      = 24 * time.Hour
)

// ErrNotFound is returned for unknown or expired scan ids.
var ErrNotFound = errors.New("scan result not found")

// Store is a bounded, expiring map from scan id to result. When full, the
// least recently used result is evicted. Results are shared, not copied:
// callers must treat them as immutable. Safe for concurrent use.
type Store struct {
	cache *expirable.LRU[string, *models.ScanResult]
}

// New returns a store holding at most capacity results for ttl each.
// Non-positive arguments select the defaults.
func New(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{}
	s.cache = expirable.NewLRU[string, *models.ScanResult](capacity, func(string, *models.ScanResult) {
		metrics.StoredScans.Dec()
	}, ttl)
	return s
}

// Put stores result under its ScanID, replacing any previous entry.
func (s *Store) Put(result *models.ScanResult) {
	if result == nil || result.ScanID == "" {
		return
	}
	if s.cache.Contains(result.ScanID) {
		s.cache.Remove(result.ScanID)
	}
	s.cache.Add(result.ScanID, result)
	metrics.StoredScans.Inc()
}

// Get returns the result stored under id, or ErrNotFound.
func (s *Store) Get(id string) (*models.ScanResult, error) {
	result, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of results currently held.
func (s *Store) Len() int {
	return s.cache.Len()
}
