package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/data/redisStore"
	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

const resultKeyPrefix = "result:"

type InMemoryResultCache struct {
	mu      sync.RWMutex
	results map[string]formModel.ExtractionResult
}

func InitInMemoryResultCache() *InMemoryResultCache {
	return &InMemoryResultCache{results: make(map[string]formModel.ExtractionResult)}
}

func (c *InMemoryResultCache) GetResult(ctx context.Context, id string) (*formModel.ExtractionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[id]
	if !ok {
		return nil, false
	}
	return &res, true
}

func (c *InMemoryResultCache) SaveResult(ctx context.Context, id string, result *formModel.ExtractionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[id] = *result
	return nil
}

func (c *InMemoryResultCache) DeleteResult(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, id)
}

// RedisResultCache keeps completed extractions so result views do not go back
// to the backend on every request.
type RedisResultCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisResultCache returns nil when redis is unreachable.
func GetRedisResultCache(ctx context.Context) *RedisResultCache {
	s := redisStore.GetRedisStore(ctx, config.RedisResultCache)
	if s == nil {
		return nil
	}
	return TestResultCache(s)
}

func TestResultCache(store *redisStore.Store) *RedisResultCache {
	return &RedisResultCache{store: store, logger: logger_i.NewLogger("ResultCache")}
}

func (c *RedisResultCache) GetResult(ctx context.Context, id string) (*formModel.ExtractionResult, bool) {
	val, err := c.store.Get(ctx, resultKeyPrefix+id)
	if c.store.IsNil(err) {
		return nil, false
	} else if err != nil {
		c.logger.Error("failed to read cached result", "id", id, "error", err)
		return nil, false
	}
	var res formModel.ExtractionResult
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		c.logger.Error("cached result is not valid json", "id", id, "error", err)
		return nil, false
	}
	return &res, true
}

func (c *RedisResultCache) SaveResult(ctx context.Context, id string, result *formModel.ExtractionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, resultKeyPrefix+id, data, config.RedisResultCacheTTL)
}

func (c *RedisResultCache) DeleteResult(ctx context.Context, id string) {
	if err := c.store.Del(ctx, resultKeyPrefix+id); err != nil {
		c.logger.Error("error deleting cached result", "id", id, "error", err)
	}
}
