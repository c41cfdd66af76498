package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"inkwit/internal/scoring"
)

func TestCachingEmbedderComputesOnce(t *testing.T) {
	inner := &stubEmbedder{vectors: map[string][]float32{"안정": {1, 0}}}
	embedder := scoring.NewCachingEmbedder(inner, scoring.NewMemoryCache())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		vector, err := embedder.Embed(ctx, "안정")
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		if len(vector) != 2 || vector[0] != 1 {
			t.Fatalf("unexpected vector %v", vector)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream embedding call, got %d", inner.calls)
	}
}

func TestCachingEmbedderDefaultsToMemoryCache(t *testing.T) {
	inner := &stubEmbedder{vectors: map[string][]float32{"보호": {0, 1}}}
	embedder := scoring.NewCachingEmbedder(inner, nil)

	ctx := context.Background()
	if _, err := embedder.Embed(ctx, "보호"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if _, err := embedder.Embed(ctx, "보호"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream embedding call, got %d", inner.calls)
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := scoring.NewRedisCache(client, time.Hour)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "안정"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put(ctx, "안정", []float32{0.5, -0.25})
	vector, ok := cache.Get(ctx, "안정")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(vector) != 2 || vector[0] != 0.5 || vector[1] != -0.25 {
		t.Fatalf("unexpected vector %v", vector)
	}
}

func TestRedisCacheExpires(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := scoring.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	cache.Put(ctx, "보호", []float32{1})
	server.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, "보호"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestRedisCacheDegradesOnUnreachableServer(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	server.Close()

	cache := scoring.NewRedisCache(client, 0)
	ctx := context.Background()

	// Both operations must degrade to misses, never panic or error out.
	cache.Put(ctx, "안정", []float32{1})
	if _, ok := cache.Get(ctx, "안정"); ok {
		t.Fatal("expected miss when redis is unreachable")
	}
}
