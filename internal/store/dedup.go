// Package store provides the storage collaborators of autodj: durable key-value backends,
// JSON documents that fall back to defaults, and the recently played dedup store.
package store

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DedupStore remembers the most recently played track IDs using a Bloom filter in front of
// an LRU cache. Once full, adding a track forgets the least recently played one.
type DedupStore struct {
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.RWMutex
	maxTracks              int
	bloomFalsePositiveRate float64
}

// NewDedupStore creates a store holding up to maxTracks IDs.
func NewDedupStore(maxTracks int, bloomFalsePositiveRate float64) (*DedupStore, error) {
	if maxTracks <= 0 {
		return nil, fmt.Errorf("maxTracks must be positive, got %d", maxTracks)
	}
	if bloomFalsePositiveRate <= 0 || bloomFalsePositiveRate >= 1 {
		return nil, fmt.Errorf("bloom false positive rate must be in (0, 1), got %f", bloomFalsePositiveRate)
	}

	cache, err := lru.New[string, struct{}](maxTracks)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &DedupStore{
		bloom:                  bloom.NewWithEstimates(uint(maxTracks), bloomFalsePositiveRate),
		lru:                    cache,
		maxTracks:              maxTracks,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}, nil
}

// Has reports whether trackID was played recently.
func (ds *DedupStore) Has(trackID string) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	if !ds.bloom.TestString(trackID) {
		return false
	}
	return ds.lru.Contains(trackID)
}

// Add records trackID as the most recently played track.
func (ds *DedupStore) Add(trackID string) {
	if trackID == "" {
		return
	}

	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.bloom.AddString(trackID)
	ds.lru.Add(trackID, struct{}{})
}

// Load clears the store and adds trackIDs in order, oldest first.
func (ds *DedupStore) Load(trackIDs []string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.clear()

	for _, trackID := range trackIDs {
		if trackID != "" {
			ds.bloom.AddString(trackID)
			ds.lru.Add(trackID, struct{}{})
		}
	}
}

// Snapshot returns the stored IDs from least to most recently played, the order Load expects.
func (ds *DedupStore) Snapshot() []string {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	return ds.lru.Keys()
}

// Size returns the number of track IDs currently stored.
func (ds *DedupStore) Size() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return ds.lru.Len()
}

func (ds *DedupStore) clear() {
	ds.bloom = bloom.NewWithEstimates(uint(ds.maxTracks), ds.bloomFalsePositiveRate)
	ds.lru.Purge()
}
