// Package ratelimit throttles requests per caller with token buckets.
package ratelimit

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rentfusion/rentfusion/internal/config"
)

// Route names of the built in quotas.
const (
	RouteSearch          = "search"
	RouteGenerateLetter  = "generate-letter"
	RouteAnalyzeContract = "analyze-contract"
	RouteLogin           = "login"
	RouteRegister        = "register"
	RouteDefault         = "default"
)

// userIDLocal is the fiber local holding the signed-in user id.
const userIDLocal = "user_id"

// DefaultQuotas returns the built in quotas, config entries replace them by name.
func DefaultQuotas() map[string]config.Quota {
	return map[string]config.Quota{
		RouteSearch:          {Max: 30, Window: time.Minute},
		RouteGenerateLetter:  {Max: 5, Window: time.Minute},
		RouteAnalyzeContract: {Max: 3, Window: time.Minute},
		RouteLogin:           {Max: 5, Window: 15 * time.Minute},
		RouteRegister:        {Max: 3, Window: time.Hour},
		RouteDefault:         {Max: 100, Window: time.Minute},
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per route and caller.
type Limiter struct {
	enabled bool
	quotas  map[string]config.Quota

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New creates a limiter from the config, falling back to DefaultQuotas.
func New(cfg config.RateLimit) *Limiter {
	quotas := DefaultQuotas()
	for name, q := range cfg.Routes {
		if q.Max > 0 && q.Window > 0 {
			quotas[name] = q
		}
	}

	return &Limiter{
		enabled: cfg.Enabled,
		quotas:  quotas,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Quota returns the quota of route, the default quota for unknown names.
func (l *Limiter) Quota(route string) config.Quota {
	if q, ok := l.quotas[route]; ok {
		return q
	}

	return l.quotas[RouteDefault]
}

// Allow takes one token for key on route. When the bucket is empty it
// reports false and how long until a token is available.
func (l *Limiter) Allow(route, key string) (bool, time.Duration) {
	q := l.Quota(route)
	now := l.now()

	l.mu.Lock()

	id := route + "|" + key

	b, ok := l.buckets[id]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(q.Window/time.Duration(q.Max)), q.Max)}
		l.buckets[id] = b
	}

	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, q.Window
	}

	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)

		return false, d
	}

	return true, 0
}

// Sweep drops buckets not used for idle and returns how many were removed.
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	n := 0

	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
			n++
		}
	}

	return n
}

// StartSweeper sweeps idle buckets every interval until ctx is done.
// A bucket idle for a full window is back at capacity, so dropping it is safe.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	longest := time.Duration(0)
	for _, q := range l.quotas {
		longest = max(longest, q.Window)
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.Sweep(longest); n > 0 {
					log.Debug().Int("removed", n).Msg("swept idle rate limiters")
				}
			}
		}
	}()
}

// Key identifies the caller, user:<id> when signed in and ip:<ip> otherwise.
func Key(c *fiber.Ctx) string {
	if id, ok := c.Locals(userIDLocal).(string); ok && id != "" {
		return "user:" + id
	}

	return "ip:" + c.IP()
}

// Middleware creates Fiber middleware applying the quota of route.
// It answers 429 with a Retry-After header in whole seconds.
func (l *Limiter) Middleware(route string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}

		key := Key(c)

		ok, wait := l.Allow(route, key)
		if !ok {
			log.Warn().Str("route", route).Str("key", key).Str("path", c.Path()).Msg("rate limit exceeded")

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		}

		return c.Next()
	}
}
