// Package ratelimit implements a fixed-window counter on redis so that all
// service instances share the same limits. A per-process map would silently
// multiply the limit by the instance count under horizontal scaling.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client *redis.Client
}

func New(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow increments the counter for key in the current window and reports
// whether the caller is still under limit. The window TTL is set when the
// counter is first created.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}
