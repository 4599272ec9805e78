package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	UserDB      *redis.Client
	TokenDB     *redis.Client
	RateLimitDB *redis.Client
	AuditDB     *redis.Client
	ContentDB   *redis.Client
	StartTime   = time.Now()
)

func InitRedis(ctx context.Context, cfg *Config) error {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		PoolTimeout:  30 * time.Second,
	}

	UserDB = redis.NewClient(copyOptions(opts, 0))
	TokenDB = redis.NewClient(copyOptions(opts, 1))
	RateLimitDB = redis.NewClient(copyOptions(opts, 2))
	AuditDB = redis.NewClient(copyOptions(opts, 3))
	ContentDB = redis.NewClient(copyOptions(opts, 4))

	for i, client := range []*redis.Client{UserDB, TokenDB, RateLimitDB, AuditDB, ContentDB} {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis DB %d: %w", i, err)
		}
	}

	return nil
}

// UseClient points every store at one client. Tests and single-DB
// deployments use it.
func UseClient(client *redis.Client) {
	UserDB = client
	TokenDB = client
	RateLimitDB = client
	AuditDB = client
	ContentDB = client
}

func copyOptions(base *redis.Options, db int) *redis.Options {
	clone := *base
	clone.DB = db
	return &clone
}
