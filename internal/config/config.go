// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file for users and problems.
	DBPath string `koanf:"db_path"`

	// CacheDir is the Badger directory for contest history caches.
	CacheDir string `koanf:"cache_dir"`

	// WeightsPath points at the topic-weight artifact. When the file is
	// missing or degenerate the embedded fallback table is used.
	WeightsPath string `koanf:"weights_path"`

	// JWTSecret signs and verifies API tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// RemoteEndpoint is the upstream GraphQL URL.
	RemoteEndpoint string `koanf:"remote_endpoint"`

	// RemoteTimeoutSeconds bounds each upstream call.
	RemoteTimeoutSeconds int `koanf:"remote_timeout_seconds"`

	// RemoteRatePerSecond throttles upstream calls.
	RemoteRatePerSecond float64 `koanf:"remote_rate_per_second"`

	// WeakCacheTTLHours bounds how long a weak-topic computation stays valid.
	WeakCacheTTLHours float64 `koanf:"weak_cache_ttl_hours"`

	// ContestCacheTTLHours bounds how long a contest history stays fresh.
	ContestCacheTTLHours float64 `koanf:"contest_cache_ttl_hours"`

	// ContestConcurrency caps parallel per-contest fetches during a rebuild.
	ContestConcurrency int `koanf:"contest_concurrency"`

	// RecommendDefaultLimit and RecommendMaxLimit bound batch sizes.
	RecommendDefaultLimit int `koanf:"recommend_default_limit"`
	RecommendMaxLimit     int `koanf:"recommend_max_limit"`

	// RecommendCandidateCap bounds how many candidates are scored per request.
	RecommendCandidateCap int `koanf:"recommend_candidate_cap"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DBPath:                "leetlens.db",
		CacheDir:              "contest-cache",
		WeightsPath:           "topic_weights.json",
		RemoteEndpoint:        "https://leetcode.com/graphql",
		RemoteTimeoutSeconds:  15,
		RemoteRatePerSecond:   4,
		WeakCacheTTLHours:     6,
		ContestCacheTTLHours:  168,
		ContestConcurrency:    6,
		RecommendDefaultLimit: 12,
		RecommendMaxLimit:     25,
		RecommendCandidateCap: 500,
	}
}
