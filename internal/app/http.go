package app

import (
	"context"

	"session-service/internal/config"
	"session-service/internal/handler"
	"session-service/internal/logger"
	"session-service/internal/metrics"
	"session-service/internal/middleware"
	"session-service/internal/session"
	"session-service/internal/sweeper"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	codec, err := session.LookupCodec(cfg.Serializer)
	if err != nil {
		return nil, nil, err
	}

	var store session.Store
	var sweep *sweeper.Sweeper

	switch cfg.Backend {
	case config.BackendPostgres:
		sqlStore, err := session.NewSQLStore(infra.DB, session.SQLConfig{
			Table:            cfg.SessionTable,
			KeyColumn:        cfg.KeyColumn,
			DataColumn:       cfg.DataColumn,
			ExpirationColumn: cfg.ExpirationColumn,
			Codec:            codec,
		})
		if err != nil {
			return nil, nil, err
		}
		store = sqlStore

		if cfg.SweepSchedule != "" {
			sweep = sweeper.New(sqlStore, cfg.SweepSchedule)
			if err := sweep.Start(); err != nil {
				return nil, nil, err
			}
			logger.Info("sweeper started", map[string]any{
				"schedule": cfg.SweepSchedule,
			})
		}

	case config.BackendRedis:
		store = session.NewRedisStore(infra.Redis, codec)
	}

	sessionHandler := handler.NewHandler(store, cfg.Backend, cfg.DefaultTTL)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())

	sessionHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if sweep != nil {
			sweep.Stop()
		}
		return infra.Close()
	}, nil
}
