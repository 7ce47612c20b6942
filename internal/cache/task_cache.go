package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
)

const TaskCacheTTL = 1 * time.Hour

const userTasksKeyType = "user_tasks"

// TaskCache is a read-through cache for task listings. A nil *TaskCache is
// valid and disables caching, which keeps the task service usable without
// Redis in tests.
type TaskCache struct {
	client *redis.Client
}

func NewTaskCache(client *redis.Client) *TaskCache {
	if client == nil {
		return nil
	}
	return &TaskCache{client: client}
}

// Get returns the cached bytes for key, or nil on a cache miss.
func (c *TaskCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		if m := observability.GlobalMetrics; m != nil {
			m.CacheMissesTotal.WithLabelValues(userTasksKeyType).Inc()
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if m := observability.GlobalMetrics; m != nil {
		m.CacheHitsTotal.WithLabelValues(userTasksKeyType).Inc()
	}
	return []byte(val), nil
}

// Set stores data under key with the cache TTL.
func (c *TaskCache) Set(ctx context.Context, key string, data interface{}) error {
	if c == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, TaskCacheTTL).Err()
}

// Invalidate drops a key after a task mutation so the next list call reads
// from the store.
func (c *TaskCache) Invalidate(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// UserTasksKey builds the cache key for a user's task list.
func UserTasksKey(userID int) string {
	return fmt.Sprintf("tasks:user:%d", userID)
}
