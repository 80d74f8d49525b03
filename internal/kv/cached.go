package kv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Store = (*CachedStore)(nil)

// freecache rounds smaller cache sizes up to this
const minCacheSizeBytes = 512 * 1024

// CachedStore is a read-through freecache layer in front of another Store.
// Writes go to the underlying store first and then refresh the cached value.
//
// freecache refuses entries larger than 1/1024 of the cache size, so a 32MB cache
// holds values up to 32KB. Bigger values are read from the underlying store every time.
type CachedStore struct {
	next          Store
	cache         *freecache.Cache
	expireSeconds int
	maxEntryBytes int

	// writesMu orders writes against read-through fills: a fill is dropped if any
	// write happened while the value was being read from the underlying store
	writesMu sync.Mutex
	writes   uint64

	warnedLarge sync.Map
}

func NewCachedStore(next Store, cacheSizeBytes int, expire time.Duration) *CachedStore {
	return &CachedStore{
		next:          next,
		cache:         freecache.NewCache(cacheSizeBytes),
		expireSeconds: int(expire.Seconds()),
		maxEntryBytes: max(cacheSizeBytes, minCacheSizeBytes) / 1024,
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if cached, err := s.cache.Get([]byte(key)); err == nil {
		return string(cached), true, nil
	}

	s.writesMu.Lock()
	writesBefore := s.writes
	s.writesMu.Unlock()

	value, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}

	s.writesMu.Lock()
	if s.writes == writesBefore {
		s.store(key, value)
	}
	s.writesMu.Unlock()

	return value, true, nil
}

func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()

	s.writes++
	if err := s.next.Set(ctx, key, value); err != nil {
		s.cache.Del([]byte(key))
		return err
	}
	s.store(key, value)
	return nil
}

func (s *CachedStore) Remove(ctx context.Context, key string) error {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()

	s.writes++
	s.cache.Del([]byte(key))
	return s.next.Remove(ctx, key)
}

// HitRate is the freecache hit rate, reported as a gauge by metrics.Manager
func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}

// MaxEntryBytes is roughly the largest key plus value freecache accepts for this cache size.
func (s *CachedStore) MaxEntryBytes() int {
	return s.maxEntryBytes
}

func (s *CachedStore) store(key, value string) {
	if err := s.cache.Set([]byte(key), []byte(value), s.expireSeconds); err != nil {
		// an old cached value must not outlive a write we failed to cache
		s.cache.Del([]byte(key))
		if errors.Is(err, freecache.ErrLargeEntry) {
			if _, warned := s.warnedLarge.LoadOrStore(key, true); !warned {
				log.Warnf(
					"kv cache: value for [%s] is %d bytes, above the %d bytes cache entry limit, raise cache_size_mb to cache it",
					key, len(value), s.MaxEntryBytes(),
				)
			}
			return
		}
		log.Warnf("kv cache: set [%s]: %s", key, err)
	}
}
