package config

import (
	"time"
)

// RateLimitConfig controls the Redis token-bucket limiter applied at the
// edge. Limiting is abuse mitigation only: when Redis is unavailable the
// middleware passes requests through.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the general per-IP limiter settings from the
// environment.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 100),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 9*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 15*time.Minute),
		KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip"),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	return sanitizeRateLimit(def)
}

// LoadStrictRateLimitConfig returns the tighter bucket used on login and
// register, keyed per IP and route so a burst against one endpoint does not
// starve the other.
func LoadStrictRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_STRICT_CAPACITY", 5),
		RefillTokens:   1,
		RefillInterval: envDur("RATE_LIMIT_STRICT_REFILL_INTERVAL", 3*time.Minute),
		TTL:            envDur("RATE_LIMIT_TTL", 15*time.Minute),
		KeyStrategy:    "ip_route",
		Prefix:         getenv("RATE_LIMIT_PREFIX", "rl") + ":strict",
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	return sanitizeRateLimit(def)
}

func sanitizeRateLimit(cfg RateLimitConfig) RateLimitConfig {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	minTTL := 5 * cfg.RefillInterval
	if cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
