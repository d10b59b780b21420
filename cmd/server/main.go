// @title                       Consumer Registry API
// @version                     1.0
// @description                 Household utility consumer registry for Bhutan: users, dzongkhags, gewogs and consumers.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/api"
	"github.com/druk-utility/consumer-registry/internal/api/handler"
	"github.com/druk-utility/consumer-registry/internal/core/service"
	"github.com/druk-utility/consumer-registry/internal/infrastructure/db/mongo"
	"github.com/druk-utility/consumer-registry/internal/infrastructure/db/redis"
	"github.com/druk-utility/consumer-registry/internal/infrastructure/queue"
	"github.com/druk-utility/consumer-registry/internal/infrastructure/security"
	"github.com/druk-utility/consumer-registry/internal/pkg/config"
	"github.com/druk-utility/consumer-registry/pkg/logger"
)

const (
	serviceName     = "consumer-registry"
	shutdownTimeout = 15 * time.Second
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	tokens, err := security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// --- MongoDB ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongo.NewUserRepository(db)
	dzongkhags := mongo.NewDzongkhagRepository(db)
	gewogs := mongo.NewGewogRepository(db)
	consumers := mongo.NewConsumerRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, dzongkhags, gewogs, consumers); err != nil {
		return err
	}

	readiness := map[string]handler.DependencyCheck{
		"mongodb": mongo.Ping(client),
	}

	// --- Redis (login throttle only; the service runs without it) ---
	var rdb *goredis.Client
	if c, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
	} else {
		rdb = c
		defer rdb.Close()
		readiness["redis"] = redis.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}
	limiter := redis.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)

	// --- Audit trail ---
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, mongo.NewAuditRepository(db), log)
	audit.Start(auditCtx)
	defer func() {
		stopAudit()
		audit.Wait()
	}()

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:       service.NewAuthService(users, hasher, tokens, limiter, audit, log),
		Gate:       service.NewAccessGate(users, tokens),
		Users:      service.NewUserService(users, audit, log),
		Dzongkhags: service.NewDzongkhagService(dzongkhags, gewogs, audit, log),
		Gewogs:     service.NewGewogService(gewogs, dzongkhags, consumers, audit, log),
		Consumers:  service.NewConsumerService(consumers, users, gewogs, audit, log),
		Readiness:  readiness,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
