package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Ceiling on request body size before any decoding happens
const MaxRequestBodyBytes = 1 << 20

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Rate limit quotas per endpoint path. Paths without an entry fall back
// to the default quota.
const (
	RateLimitWindow        = time.Minute
	DefaultRateLimitPerMin = 100

	ChatRateLimitPerMin         = 30
	EmbeddingsRateLimitPerMin   = 20
	ImageRateLimitPerMin        = 10
	ConversationRateLimitPerMin = 50
)
