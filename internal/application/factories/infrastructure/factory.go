package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"railbook/internal/config"
	"railbook/internal/infrastructure/postgres"
	"railbook/internal/infrastructure/redis"
)

// Postgres startup is retried because the database usually comes up alongside
// the service in compose; once connected the pool reconnects on its own.
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Factory lazily opens the shared infrastructure connections and owns their
// shutdown.
type Factory struct {
	cfg      *config.Config
	pgPool   *pgxpool.Pool
	redisCli *goredis.Client
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if f.pgPool != nil {
		return f.pgPool, nil
	}

	var pool *pgxpool.Pool
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = postgres.NewClient(ctx, postgres.Config{
			Host:     f.cfg.Postgres.Host,
			Port:     f.cfg.Postgres.Port,
			User:     f.cfg.Postgres.User,
			Password: f.cfg.Postgres.Password,
			DBName:   f.cfg.Postgres.DBName,
		})
		if err == nil {
			break
		}
		if attempt < connectAttempts {
			slog.Warn("postgres not ready, retrying", "attempt", attempt, "error", err)
			time.Sleep(connectBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect postgres after %d attempts: %w", connectAttempts, err)
	}

	f.pgPool = pool
	return pool, nil
}

func (f *Factory) Redis(ctx context.Context) (*goredis.Client, error) {
	if f.redisCli != nil {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr: f.cfg.Redis.Addr,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

func (f *Factory) Close() {
	if f.pgPool != nil {
		f.pgPool.Close()
	}
	if f.redisCli != nil {
		f.redisCli.Close()
	}
}
