package cache

import (
	"errors"
	"time"

	"sjsage522/jobworker/logger"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache: miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// New returns a memcache-backed cache when addr is set, otherwise an
// in-process cache.
func New(addr string) CacheService {
	if addr == "" {
		logger.ForCache().Info().Str("backend", "memory").Msg("Using in-process cache")
		return NewMemoryService(time.Minute)
	}
	logger.ForCache().Info().Str("backend", "memcache").Str("addr", addr).Msg("Using memcache")
	return NewMemcacheService(addr)
}
