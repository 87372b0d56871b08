package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"mathquest/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const problemKeyPrefix = "problem:view:"

// ProblemCache stores problem display fields in redis. Display fields never
// change after generation so entries only expire by TTL. Every failure is
// logged and treated as a miss.
type ProblemCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProblemCache(client *redis.Client, ttl time.Duration) *ProblemCache {
	return &ProblemCache{client: client, ttl: ttl}
}

func (c *ProblemCache) Get(ctx context.Context, problemID string) (*model.ProblemView, bool) {
	data, err := c.client.Get(ctx, problemKeyPrefix+problemID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("WARN: problem cache get %s: %v", problemID, err)
		return nil, false
	}
	var view model.ProblemView
	if err := json.Unmarshal(data, &view); err != nil {
		log.Printf("WARN: problem cache entry %s is corrupt: %v", problemID, err)
		return nil, false
	}
	return &view, true
}

func (c *ProblemCache) Set(ctx context.Context, problemID string, view model.ProblemView) {
	data, err := json.Marshal(view)
	if err != nil {
		log.Printf("WARN: problem cache encode %s: %v", problemID, err)
		return
	}
	if err := c.client.Set(ctx, problemKeyPrefix+problemID, data, c.ttl).Err(); err != nil {
		log.Printf("WARN: problem cache set %s: %v", problemID, err)
	}
}
