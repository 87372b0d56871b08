package cache

import (
	"context"
	"time"

	"mathquest/internal/domain/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryProblemCache is the in-process problem cache used when redis is not
// configured. It is bounded by size as well as TTL.
type MemoryProblemCache struct {
	lru *expirable.LRU[string, model.ProblemView]
}

func NewMemoryProblemCache(size int, ttl time.Duration) *MemoryProblemCache {
	return &MemoryProblemCache{lru: expirable.NewLRU[string, model.ProblemView](size, nil, ttl)}
}

func (c *MemoryProblemCache) Get(_ context.Context, problemID string) (*model.ProblemView, bool) {
	view, ok := c.lru.Get(problemID)
	if !ok {
		return nil, false
	}
	return &view, true
}

func (c *MemoryProblemCache) Set(_ context.Context, problemID string, view model.ProblemView) {
	c.lru.Add(problemID, view)
}
