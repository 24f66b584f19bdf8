package embedding

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// EmbeddingCache is an LRU cache for embeddings keyed by text.
// Values are copied in and out so callers cannot mutate cached vectors.
type EmbeddingCache struct {
	lru *expirable.LRU[string, []float32]
}

// NewEmbeddingCache creates a new cache with the given capacity. A ttl of zero
// disables expiry.
func NewEmbeddingCache(capacity int, ttl time.Duration) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmbeddingCache{lru: expirable.NewLRU[string, []float32](capacity, nil, ttl)}
}

// Get returns the cached embedding for key if present.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return cloneEmbedding(v), true
}

// Set stores the embedding for key, evicting the oldest entry if at capacity.
func (c *EmbeddingCache) Set(key string, value []float32) {
	c.lru.Add(key, cloneEmbedding(value))
}

// CachedEmbedder wraps an Embedder with an EmbeddingCache.
type CachedEmbedder struct {
	next  Embedder
	cache *EmbeddingCache
}

// WithCache wraps e in a CachedEmbedder. Returns e unchanged when size <= 0.
func WithCache(e Embedder, size int, ttl time.Duration) Embedder {
	if e == nil || size <= 0 {
		return e
	}
	return &CachedEmbedder{next: e, cache: NewEmbeddingCache(size, ttl)}
}

// Embed returns the cached embedding for text or computes and caches it.
// Errors are never cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateInput(text); err != nil {
		return nil, err
	}
	if cached, ok := c.cache.Get(text); ok {
		return cached, nil
	}
	emb, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, c, texts)
}

// Dimensions returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.next.Dimensions()
}

// Close closes the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	return c.next.Close()
}

func cloneEmbedding(values []float32) []float32 {
	if values == nil {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
