package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/rhinobase/workshop/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Key names a cached query result.
type Key string

// KeyAllTasks holds the unfiltered task list.
const KeyAllTasks Key = "task:list"

func (k Key) String() string { return string(k) }

// TaskCache caches the task list in Redis.
type TaskCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb redis.Cmdable, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns cached list or nil if miss.
func (c *TaskCache) GetList(ctx context.Context) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, KeyAllTasks.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TaskCache) SetList(ctx context.Context, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, KeyAllTasks.String(), b, c.ttl).Err()
}

// Invalidate drops the cached list after a write.
func (c *TaskCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, KeyAllTasks.String()).Err()
}
