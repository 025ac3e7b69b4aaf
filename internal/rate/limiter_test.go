package rate

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 10, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		r, err := l.Allow(ctx, "1.2.3.4|/api/authorize")
		if err != nil {
			t.Fatal(err)
		}
		if r.Allowed != want {
			t.Fatalf("hit %d: allowed=%v want %v", i+1, r.Allowed, want)
		}
		if !r.Allowed && r.RetryAfter != 50*time.Second {
			t.Fatalf("retry after = %v", r.RetryAfter)
		}
	}

	// otra clave no comparte contador
	if r, _ := l.Allow(ctx, "5.6.7.8|/api/authorize"); !r.Allowed || r.Remaining != 1 {
		t.Fatalf("independent key: %+v", r)
	}

	// ventana siguiente
	now = now.Add(time.Minute)
	if r, _ := l.Allow(ctx, "1.2.3.4|/api/authorize"); !r.Allowed {
		t.Fatalf("new window should allow: %+v", r)
	}
}

func TestWindowKey(t *testing.T) {
	now := time.Unix(125, 0).UTC()
	k, left := window("rl:", "a b", now, time.Minute)
	if k != "rl:a_b:120" {
		t.Fatalf("key = %s", k)
	}
	if left != 55*time.Second {
		t.Fatalf("left = %v", left)
	}
}

func TestNoop(t *testing.T) {
	r, err := Noop{}.Allow(context.Background(), "x")
	if err != nil || !r.Allowed {
		t.Fatalf("noop: %+v %v", r, err)
	}
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("LOCKPAD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LOCKPAD_TEST_REDIS_ADDR not set")
	}
	client := rdb.NewClient(&rdb.Options{Addr: addr})
	defer client.Close()

	prefix := fmt.Sprintf("lockpad:test:rl:%d:", time.Now().UnixNano())
	l := NewRedisLimiter(client, prefix, 2, time.Minute)
	ctx := context.Background()

	var allowed []bool
	for range 3 {
		r, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		allowed = append(allowed, r.Allowed)
	}
	if !allowed[0] || !allowed[1] || allowed[2] {
		t.Fatalf("allowed = %v", allowed)
	}
}
