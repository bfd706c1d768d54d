package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if LEETLENS_CONFIG is set
//  3. env (prefix LEETLENS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LEETLENS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: LEETLENS_ADDR, LEETLENS_DB_PATH, ...
	// Map env keys like LEETLENS_DB_PATH -> db_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LEETLENS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "leetlens_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.RemoteEndpoint == "":
		return fmt.Errorf("%w: remote_endpoint must not be empty", ErrInvalidConfig)
	case c.RemoteTimeoutSeconds <= 0:
		return fmt.Errorf("%w: remote_timeout_seconds must be positive", ErrInvalidConfig)
	case c.ContestConcurrency <= 0:
		return fmt.Errorf("%w: contest_concurrency must be positive", ErrInvalidConfig)
	case c.WeakCacheTTLHours <= 0:
		return fmt.Errorf("%w: weak_cache_ttl_hours must be positive", ErrInvalidConfig)
	case c.ContestCacheTTLHours <= 0:
		return fmt.Errorf("%w: contest_cache_ttl_hours must be positive", ErrInvalidConfig)
	case c.RecommendDefaultLimit <= 0 || c.RecommendDefaultLimit > c.RecommendMaxLimit:
		return fmt.Errorf("%w: recommend_default_limit must be in (0, recommend_max_limit]", ErrInvalidConfig)
	case c.RecommendCandidateCap <= 0:
		return fmt.Errorf("%w: recommend_candidate_cap must be positive", ErrInvalidConfig)
	}
	return nil
}
