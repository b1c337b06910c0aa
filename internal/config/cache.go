package config

import "time"

// AccountsCacheConfig controls the Redis cache in front of the account list.
// Caching is off when Enabled is false or no Redis client is available.
type AccountsCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadAccountsCacheConfig reads ACCOUNTS_CACHE_* with defaults.
func LoadAccountsCacheConfig() AccountsCacheConfig {
	c := AccountsCacheConfig{
		Enabled: envBool("ACCOUNTS_CACHE_ENABLED", true),
		TTL:     envDur("ACCOUNTS_CACHE_TTL", 30*time.Second),
		Prefix:  envStr("ACCOUNTS_CACHE_PREFIX", "cache:accounts"),
	}
	if c.TTL <= 0 {
		c.Enabled = false
	}
	return c
}
