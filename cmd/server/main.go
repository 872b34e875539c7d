package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"offio/backend/config"
	"offio/backend/internal/api/handler"
	"offio/backend/internal/api/router"
	"offio/backend/internal/repository"
	"offio/backend/internal/service"
	"offio/backend/pkg/database"
	"offio/backend/pkg/jwt"
	applogger "offio/backend/pkg/logger"
	"offio/backend/pkg/objectstore"
	"offio/backend/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("OFFIO_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting offio backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Activity.Timezone),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, applogger.GormLevel(cfg.Log.Level), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. Redis is optional: without it the detail cache stays in-process
	// and agent rate limiting is off
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, shared cache and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. object storage is optional: without a bucket screenshots are not served
	var opts service.Options
	if cfg.Storage.Bucket != "" {
		store, err := objectstore.New(&cfg.Storage)
		if err != nil {
			logger.Fatal("object storage init failed", zap.Error(err))
		}
		opts.Store = store
		logger.Info("object storage configured", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Warn("storage.bucket not set, screenshot uploads disabled")
	}
	if rdb != nil {
		opts.SharedCache = rdb
	}

	// 6. JWT
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, opts, logger)
	h := handler.NewHandler(svc)

	// 8. router
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
