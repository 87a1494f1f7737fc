package embed

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// Embedder produces a fixed-dimension contextual embedding for a word. It
// must be deterministic per (text, pos) input. A zero vector means "no
// embedding available; skip this word".
type Embedder interface {
	// Name returns the backend name.
	Name() string

	// Embed returns the embedding vector for one word.
	Embed(ctx context.Context, text, pos string) ([]float32, error)
}

// Cached wraps an Embedder with a process-lifetime cache keyed by
// (text, pos). The cache is private to one pipeline, so no serialization
// beyond go-cache's own locking is required.
type Cached struct {
	inner Embedder
	cache *gocache.Cache
}

// NewCached wraps inner with an unexpiring cache.
func NewCached(inner Embedder) *Cached {
	return &Cached{
		inner: inner,
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Name returns the wrapped backend name.
func (c *Cached) Name() string {
	return c.inner.Name()
}

// Embed returns the cached vector for (text, pos), calling the backend on a
// miss. Failed calls are not cached so a later retry can succeed.
func (c *Cached) Embed(ctx context.Context, text, pos string) ([]float32, error) {
	key := text + "\x00" + pos
	if val, found := c.cache.Get(key); found {
		return val.([]float32), nil
	}
	vec, err := c.inner.Embed(ctx, text, pos)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, vec, gocache.NoExpiration)
	return vec, nil
}

// IsZero reports whether every component of vec is zero.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
