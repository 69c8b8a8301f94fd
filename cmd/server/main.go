package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/authstack/identity-service/internal/api"
	"github.com/authstack/identity-service/internal/core/authz"
	"github.com/authstack/identity-service/internal/core/password"
	"github.com/authstack/identity-service/internal/core/service"
	"github.com/authstack/identity-service/internal/core/token"
	"github.com/authstack/identity-service/internal/infrastructure/config"
	mongodb "github.com/authstack/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/authstack/identity-service/internal/infrastructure/db/redis"
	"github.com/authstack/identity-service/internal/infrastructure/queue"
	"github.com/authstack/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Core services ---
	userRepo := mongodb.NewUserRepository(db)
	activityRepo := mongodb.NewActivityRepository(db)

	activityService := service.NewActivityService(activityRepo, log)

	// Audit records flow through the dispatcher so request handling never
	// waits on the activity store.
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, activityService, log)
	dispatcher.Start(ctx)

	hasher := password.NewHasher(cfg.Auth.HashIterations)
	tokens := token.New(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	engine := authz.NewEngine(userRepo)

	authService := service.NewAuthService(userRepo, hasher, tokens, dispatcher, log)
	userService := service.NewUserService(userRepo, hasher, activityService, log)

	limiter := redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Users:      userService,
		Activities: activityService,
		Tokens:     tokens,
		Engine:     engine,
		Limiter:    limiter,
		Mongo:      db,
		Redis:      rdb,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
