package annotate

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultProgramCacheSize bounds the guard program cache.
const DefaultProgramCacheSize = 128

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewLRUProgramCache returns a size-bounded ProgramCache. Non-positive sizes
// fall back to DefaultProgramCacheSize.
func NewLRUProgramCache(size int) ProgramCache {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		panic(err)
	}
	return &lruProgramCache{cache: cache}
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}

// WithProgramCache registers a program cache on the guard.
func WithProgramCache(cache ProgramCache) GuardOption {
	return func(g *Guard) {
		g.cache = cache
	}
}
