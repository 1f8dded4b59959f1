package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/history-service/cache"
	httpapi "github.com/radieske/keyshop-casino/internal/history-service/http"
	"github.com/radieske/keyshop-casino/internal/history-service/repo"
	"github.com/radieske/keyshop-casino/internal/history-service/ws"
	sharedcache "github.com/radieske/keyshop-casino/internal/shared/cache"
	"github.com/radieske/keyshop-casino/internal/shared/config"
	"github.com/radieske/keyshop-casino/internal/shared/db"
	"github.com/radieske/keyshop-casino/internal/shared/logger"
	"github.com/radieske/keyshop-casino/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	// hub WebSocket alimentado pelo canal Redis do history-worker
	hub := ws.NewHub(log, func(*http.Request) bool { return true }) // origem liberada, o gateway aplica CORS
	if err := ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log); err != nil {
		log.Fatal("redis subscribe", zap.Error(err))
	}

	api := &httpapi.API{
		Log:      log,
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    cache.New(redisClient),
		CacheTTL: cfg.StatsCacheTTL,
	}
	r := chi.NewRouter()
	r.Get("/ws", hub.HandleWS)
	r.Mount("/", api.Router())

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	// sobe servidor de métricas e health
	metrics.StartMetricsServer(log, cfg.MetricsPort, metrics.All(
		func(ctx context.Context) error { return pg.PingContext(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))

	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("history-service listening", zap.String("addr", srv.Addr), zap.String("channel", cfg.RedisPubSubChannel))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
