package app

import (
	"context"
	"database/sql"
	"time"

	"session-service/internal/config"
	"session-service/internal/db"
	"session-service/internal/logger"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
)

type Infra struct {
	DB    *sql.DB
	Redis *goredis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	switch cfg.Backend {
	case config.BackendPostgres:
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}

		if err := db.EnsureSessionSchema(
			ctx,
			sqlDB,
			cfg.SessionTable,
			cfg.KeyColumn,
			cfg.DataColumn,
			cfg.ExpirationColumn,
		); err != nil {
			return nil, err
		}

		logger.Info("database ready", map[string]any{
			"table": cfg.SessionTable,
		})

		infra.DB = sqlDB

	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, err
		}

		logger.Info("redis ready", nil)

		infra.Redis = client
	}

	return infra, nil
}

func (i *Infra) Close() error {
	if i.DB != nil {
		return i.DB.Close()
	}
	if i.Redis != nil {
		return i.Redis.Close()
	}
	return nil
}
