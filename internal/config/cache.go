package config

import "time"

// CacheConfig drives the Redis response cache in front of the catalog reads.
// Only successful JSON GET responses are stored; writes invalidate by route.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "pos:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	return c
}
