package cache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent, regardless of backend
var ErrCacheMiss = errors.New("cache: miss")

// CacheService represents a generic expiring key-value cache
type CacheService interface {
	// Get retrieves a value from the cache; ErrCacheMiss when absent
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with a time-to-live
	Set(key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
