package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryService implements CacheService in process memory
type MemoryService struct {
	cache *gocache.Cache
}

// NewMemoryService creates an in-process cache that purges expired items
// every cleanupInterval.
func NewMemoryService(cleanupInterval time.Duration) *MemoryService {
	return &MemoryService{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (m *MemoryService) Get(key string) ([]byte, error) {
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return value.([]byte), nil
}

// Set stores a value with an expiration time; zero means no expiration
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.cache.Set(key, value, expiration)
	return nil
}

// Delete removes a value from the cache
func (m *MemoryService) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}
