// Package cache keeps JSON encoded responses in a fiber storage backend.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// DefaultTTL applies when neither the caller nor the config sets one.
const DefaultTTL = 300 * time.Second

// SearchPrefix is the key prefix of cached property searches.
const SearchPrefix = "search:"

var (
	requestsOnce sync.Once              //nolint:gochecknoglobals
	requests     *prometheus.CounterVec //nolint:gochecknoglobals
)

func cacheRequests() *prometheus.CounterVec {
	requestsOnce.Do(func() {
		requests = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentfusion_cache_requests_total",
			Help: "Cache lookups by result (hit or miss).",
		}, []string{"result"})
	})

	return requests
}

// Cache reads through to a loader on a miss. fiber.Storage cannot list keys,
// so the keys written by this process are indexed for Invalidate.
type Cache struct {
	storage fiber.Storage
	ttl     time.Duration

	mu   sync.Mutex
	keys map[string]time.Time // key -> expiry
}

// New returns a cache on storage. ttl <= 0 selects DefaultTTL.
func New(storage fiber.Storage, ttl time.Duration) (*Cache, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		storage: storage,
		ttl:     ttl,
		keys:    make(map[string]time.Time),
	}, nil
}

// Storage returns the underlying storage, shared with the session store.
func (c *Cache) Storage() fiber.Storage {
	return c.storage
}

// Remember decodes the cached value of key into dst. On a miss it calls fn,
// stores its result for ttl (0 means the cache default) and decodes that
// into dst. It reports whether the value came from the cache.
func (c *Cache) Remember(key string, ttl time.Duration, dst any, fn func() (any, error)) (bool, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := c.storage.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	if len(raw) > 0 {
		if err = json.Unmarshal(raw, dst); err == nil {
			cacheRequests().WithLabelValues("hit").Inc()

			return true, nil
		}

		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
	}

	cacheRequests().WithLabelValues("miss").Inc()

	v, err := fn()
	if err != nil {
		return false, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err = c.storage.Set(key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	} else {
		c.track(key, ttl)
	}

	return false, json.Unmarshal(raw, dst)
}

// Invalidate deletes every indexed key starting with prefix and returns how many were removed.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	n := 0

	for k, exp := range c.keys {
		if now.After(exp) {
			delete(c.keys, k)

			continue
		}

		if !strings.HasPrefix(k, prefix) {
			continue
		}

		if err := c.storage.Delete(k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache delete failed")

			continue
		}

		delete(c.keys, k)
		n++
	}

	return n
}

func (c *Cache) track(key string, ttl time.Duration) {
	c.mu.Lock()
	c.keys[key] = time.Now().Add(ttl)
	c.mu.Unlock()
}

// SearchKey builds the cache key of a property search.
func SearchKey(filters any) string {
	b, err := json.Marshal(filters)
	if err != nil {
		return SearchPrefix + fmt.Sprintf("%v", filters)
	}

	return SearchPrefix + string(b)
}
