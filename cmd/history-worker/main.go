package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/history-worker/cache"
	"github.com/radieske/keyshop-casino/internal/history-worker/consumer"
	"github.com/radieske/keyshop-casino/internal/history-worker/pubsub"
	"github.com/radieske/keyshop-casino/internal/history-worker/repository"
	sharedcache "github.com/radieske/keyshop-casino/internal/shared/cache"
	"github.com/radieske/keyshop-casino/internal/shared/config"
	"github.com/radieske/keyshop-casino/internal/shared/db"
	"github.com/radieske/keyshop-casino/internal/shared/kafka"
	"github.com/radieske/keyshop-casino/internal/shared/logger"
	"github.com/radieske/keyshop-casino/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group history-worker, commit manual após persistir
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundSettled, "history-worker")
	defer reader.Close()

	var dlq kafka.MessageWriter
	if cfg.TopicRoundSettledDLQ != "" {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettledDLQ)
		defer w.Close()
		dlq = w
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "history_db_writes_total", Help: "rodadas gravadas (history+stats)"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "history_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		DLQ:         dlq,
		Store:       repository.NewPostgresRepo(pg),
		Cache:       cache.NewRedisCache(redisClient, cfg.StatsCacheTTL),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisPubSubChannel,
		OnConsumed:  func() { consumed.Inc() },
		OnPersist:   func() { persist.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(log, cfg.MetricsPort, metrics.All(
		func(ctx context.Context) error { return pg.PingContext(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))

	log.Info("history-worker started",
		zap.String("consume", cfg.TopicRoundSettled),
		zap.String("dlq", cfg.TopicRoundSettledDLQ),
		zap.String("broadcast", cfg.RedisPubSubChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("history-worker stopped")
}
