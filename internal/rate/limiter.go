// Package rate implementa rate limiting de ventana fija, en memoria o
// compartido vía Redis.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration // sólo si !Allowed
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// window calcula la clave de la ventana actual y cuánto le queda.
func window(prefix, key string, now time.Time, size time.Duration) (string, time.Duration) {
	start := now.Truncate(size)
	k := fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
	return k, start.Add(size).Sub(now)
}

func result(hits, max int64, left time.Duration) Result {
	r := Result{Allowed: hits <= max, Limit: max, Remaining: max - hits}
	if r.Remaining < 0 {
		r.Remaining = 0
	}
	if !r.Allowed {
		r.RetryAfter = left
	}
	return r
}

// RedisLimiter: INCR + EXPIRE por ventana. Comparte el conteo entre réplicas.
type RedisLimiter struct {
	client rdb.UniversalClient
	prefix string
	max    int64
	size   time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, size time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), size: size, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k, left := window(l.prefix, key, l.now().UTC(), l.size)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, left+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	return result(incr.Val(), l.max, left), nil
}

// MemoryLimiter guarda los contadores en go-cache; cada ventana expira sola.
type MemoryLimiter struct {
	c    *gocache.Cache
	max  int64
	size time.Duration
	now  func() time.Time
}

func NewMemoryLimiter(max int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:    gocache.New(size, 2*size),
		max:  int64(max),
		size: size,
		now:  time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	k, left := window("", key, l.now().UTC(), l.size)
	for {
		if err := l.c.Add(k, int64(1), left); err == nil {
			return result(1, l.max, left), nil
		}
		hits, err := l.c.IncrementInt64(k, 1)
		if err == nil {
			return result(hits, l.max, left), nil
		}
		// expiró entre Add e Increment: reintentar
	}
}

// Noop deja pasar todo; es el limiter cuando rate.enabled=false.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) { return Result{Allowed: true}, nil }
