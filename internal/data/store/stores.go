package store

import (
	"context"

	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/domain/jobModel"
)

// NewJobStore prefers redis and falls back to memory when it is disabled or down.
func NewJobStore(ctx context.Context, useRedis bool) jobModel.JobStore {
	if useRedis {
		if s := GetRedisJobStore(ctx); s != nil {
			return s
		}
		inMemLogger.Warn("redis unavailable, keeping jobs in memory")
	}
	return InitInMemoryJobStore()
}

func NewResultCache(ctx context.Context, useRedis bool) formModel.ResultCache {
	if useRedis {
		if c := GetRedisResultCache(ctx); c != nil {
			return c
		}
		inMemLogger.Warn("redis unavailable, caching results in memory")
	}
	return InitInMemoryResultCache()
}
