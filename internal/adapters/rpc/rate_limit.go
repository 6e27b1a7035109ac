package rpc

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitEnabledEnv = "COLORD_RPC_RATE_LIMIT_ENABLED"
	rateLimitRPSEnv     = "COLORD_RPC_RATE_LIMIT_RPS"
	rateLimitBurstEnv   = "COLORD_RPC_RATE_LIMIT_BURST"
)

type rateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

func loadRateLimitConfig() rateLimitConfig {
	cfg := rateLimitConfig{
		Enabled: true,
		RPS:     30,
		Burst:   60,
	}
	if raw := strings.TrimSpace(os.Getenv(rateLimitEnabledEnv)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Enabled = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(rateLimitRPSEnv)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			cfg.RPS = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(rateLimitBurstEnv)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.Burst = parsed
		}
	}
	return cfg
}

// rateLimiter keeps one token bucket per client key. Idle entries are
// reaped opportunistically so the map does not grow without bound.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*rateLimitEntry
	hits  uint64
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter returns nil when limiting is disabled; a nil limiter
// allows everything.
func newRateLimiter(cfg rateLimitConfig) *rateLimiter {
	if !cfg.Enabled {
		return nil
	}
	return &rateLimiter{
		limit:   rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		idleTTL: 10 * time.Minute,
		byKey:   make(map[string]*rateLimitEntry),
	}
}

func (l *rateLimiter) allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.byKey[key]
	if !ok {
		entry = &rateLimitEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = entry
	}
	entry.lastSeen = now
	allowed := entry.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}
