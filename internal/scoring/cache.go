package scoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Embedder produces a fixed-length vector for a piece of text. Implementations
// call an external model service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedCache stores computed embedding vectors. Lookups and stores are
// best-effort: a cache failure degrades to recomputation, never to a scoring
// failure. Concurrent misses on one key may race to compute; the computation
// is idempotent so the last write wins harmlessly.
type EmbedCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Put(ctx context.Context, key string, vector []float32)
}

// MemoryCache is a process-wide embedding cache.
type MemoryCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vectors: make(map[string][]float32)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.vectors[key]
	return vector, ok
}

func (c *MemoryCache) Put(_ context.Context, key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = vector
}

const redisKeyPrefix = "inkwit:embedding:"

// RedisCache shares embeddings across daemon replicas so paid embedding calls
// for the static taxonomy happen once per deployment, not once per process.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a redis client. A zero ttl keeps entries indefinitely.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal(payload, &vector); err != nil {
		return nil, false
	}
	return vector, true
}

func (c *RedisCache) Put(ctx context.Context, key string, vector []float32) {
	payload, err := json.Marshal(vector)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err()
}

// CachingEmbedder fronts an Embedder with an EmbedCache.
type CachingEmbedder struct {
	inner Embedder
	cache EmbedCache
}

// NewCachingEmbedder wraps inner; a nil cache defaults to an in-process map.
func NewCachingEmbedder(inner Embedder, cache EmbedCache) *CachingEmbedder {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CachingEmbedder{inner: inner, cache: cache}
}

func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.cache.Get(ctx, text); ok {
		return vector, nil
	}
	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, text, vector)
	return vector, nil
}
