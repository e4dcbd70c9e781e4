package redisStore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    = logger_i.NewLogger("Redis Store")
	once      sync.Once

	redisAddr     = config.RedisAddr
	redisPassword string
)

type Store struct {
	client *redis.Client
	Type   int
}

// Configure sets the connection used by stores created afterwards.
func Configure(addr, password string) {
	mu.Lock()
	defer mu.Unlock()
	if addr != "" {
		redisAddr = addr
	}
	redisPassword = password
}

// GetRedisStore returns the shared store for a redis DB, or nil when redis
// cannot be reached. Clients are closed when ctx ends.
func GetRedisStore(ctx context.Context, DBType int) *Store {

	mu.RLock()
	instance, exists := instances[DBType]
	mu.RUnlock()

	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[DBType]; exists {
		return instance
	}
	return createNewStore(ctx, DBType)
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for dbType, store := range instances {
		err := store.client.Close()
		if err != nil {
			logger.Error("Error closing redis client", "db", dbType, "error", err)
		}
		delete(instances, dbType)
	}
	logger.Info("Redis Store Closed successfully")
}

func createNewStore(ctx context.Context, dbType int) *Store {
	log := logger.With("db", strconv.Itoa(dbType), "addr", redisAddr)
	newClient := redis.NewClient(&redis.Options{
		Addr:                  redisAddr,
		Password:              redisPassword,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis is offline", "error", err)
		_ = newClient.Close()
		return nil
	}

	log.Info("Redis store init successfully")

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore
}

// NewTestStore wraps an existing client, for tests against miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
