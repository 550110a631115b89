package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"symptom-checker/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Embedder produces a dense vector for a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is a shared second-level vector store
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// DefaultFlightTimeout bounds a shared upstream call once it is detached from its callers
const DefaultFlightTimeout = 30 * time.Second

// CachedEmbedder memoizes embeddings per text for the lifetime of a session.
// Concurrent misses for the same text share a single upstream call. The shared call
// does not inherit any one caller's cancellation; each caller stops waiting when its
// own context is done.
type CachedEmbedder struct {
	inner         Embedder
	modelID       string
	l2            Store
	flightTimeout time.Duration
	group         singleflight.Group
	mu            sync.RWMutex
	mem           map[string][]float32
	logger        *zap.Logger
}

// NewCachedEmbedder wraps inner. l2 may be nil.
func NewCachedEmbedder(inner Embedder, modelID string, l2 Store) *CachedEmbedder {
	return &CachedEmbedder{
		inner:         inner,
		modelID:       modelID,
		l2:            l2,
		flightTimeout: DefaultFlightTimeout,
		mem:           make(map[string][]float32),
		logger:        logger.Named("embedding_cache"),
	}
}

// Embed returns the cached vector for text, computing it on first use
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if vec, ok := c.get(key); ok {
		return vec, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()
		return c.load(flightCtx, key, text)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneVector(res.Val.([]float32)), nil
	}
}

// load resolves a miss through the shared store, then the upstream embedder
func (c *CachedEmbedder) load(ctx context.Context, key, text string) ([]float32, error) {
	if vec, ok := c.get(key); ok {
		return vec, nil
	}
	if c.l2 != nil {
		vec, ok, err := c.l2.Get(ctx, key)
		if err != nil {
			c.logger.Warn("Shared embedding cache read failed", zap.Error(err))
		} else if ok {
			c.put(key, vec)
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(key, vec)
	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, vec); err != nil {
			c.logger.Warn("Shared embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

// Len returns the number of vectors held in memory
func (c *CachedEmbedder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// Reset discards every in-memory vector
func (c *CachedEmbedder) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = make(map[string][]float32)
}

func (c *CachedEmbedder) key(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEmbedder) get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if vec, ok := c.mem[key]; ok {
		return cloneVector(vec), true
	}
	return nil, false
}

func (c *CachedEmbedder) put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = cloneVector(vec)
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
