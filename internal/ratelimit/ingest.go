package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatlens/chatlens/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyIngestTenant = "telemetry:ingest:tenant:%s"

// IngestLimiter throttles log submissions per tenant. A nil limiter (rate
// limiting disabled) allows everything, and redis outages fail open so the
// pipeline keeps accepting telemetry without redis.
type IngestLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewIngestLimiter(cfg config.Config) (*IngestLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.IngestRate <= 0 || cfg.IngestBurst <= 0 {
		return nil, errors.New("ingest rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &IngestLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.IngestRate,
		burst:  cfg.IngestBurst,
	}, nil
}

func (l *IngestLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowTenant spends one admission token for the tenant. Redis errors are
// returned alongside an allow so callers can log and proceed.
func (l *IngestLimiter) AllowTenant(ctx context.Context, tenantID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyIngestTenant, strings.TrimSpace(tenantID)), l.rate, l.burst)
	if err != nil {
		return true, err
	}
	return res.Allowed, nil
}
