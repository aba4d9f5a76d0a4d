package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/blogcraftai/blogcraft-backend/config"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/storage/postgres"
)

const pingTimeout = 2 * time.Second

// Stores holds every long-lived connection the API and worker share. Redis
// is optional: with REDIS_ADDR unset, Redis is nil and suggestions are not
// cached.
type Stores struct {
	SQL   *sql.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// OpenStores connects to Postgres (database/sql for the blog repositories,
// a pgx pool for suggestion history) and, when configured, Redis.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.OpenPool(ctx, &cfg.Database)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Stores{SQL: db, Pool: pool}
	if cfg.Redis.Addr == "" {
		logging.Log.Warn("REDIS_ADDR is not set; suggestion cache disabled")
		return s, nil
	}

	rdb, err := OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Redis = rdb
	return s, nil
}

// OpenRedis creates a client and verifies it with a ping.
func OpenRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(pctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Close releases every open connection. Safe on a partially opened Stores.
func (s *Stores) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logging.Log.WithError(err).Warn("closing redis")
		}
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.SQL != nil {
		if err := s.SQL.Close(); err != nil {
			logging.Log.WithError(err).Warn("closing postgres")
		}
	}
}
