package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// Limiter is a fixed-window rate limiter backed by Redis. It guards
// unauthenticated demo-user provisioning against abuse.
type Limiter interface {
	// Allow reports whether the caller identified by key may proceed.
	// Fails open: a Redis error allows the request and logs a warning.
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type limiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

type LimiterConfig struct {
	Addr   string
	Limit  int
	Window time.Duration
}

func NewLimiter(log *logger.Logger, cfg LimiterConfig) (Limiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing Redis address")
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &limiter{
		log:    log.With("client", "RedisLimiter"),
		rdb:    rdb,
		limit:  cfg.Limit,
		window: cfg.Window,
	}, nil
}

func (l *limiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		l.log.Warn("Rate limiter unavailable; allowing request", "key", key, "error", err)
		return true, nil
	}
	if count == 1 {
		// First hit in the window sets the expiry.
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.log.Warn("Rate limiter expire failed", "key", key, "error", err)
		}
	}

	return count <= int64(l.limit), nil
}

func (l *limiter) Close() error {
	return l.rdb.Close()
}
