package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/casino-service/guard"
	chttp "github.com/radieske/keyshop-casino/internal/casino-service/http"
	kpub "github.com/radieske/keyshop-casino/internal/casino-service/producer"
	"github.com/radieske/keyshop-casino/internal/casino-service/service"
	"github.com/radieske/keyshop-casino/internal/casino-service/wallet"
	"github.com/radieske/keyshop-casino/internal/shared/cache"
	"github.com/radieske/keyshop-casino/internal/shared/config"
	"github.com/radieske/keyshop-casino/internal/shared/kafka"
	"github.com/radieske/keyshop-casino/internal/shared/logger"
	"github.com/radieske/keyshop-casino/internal/shared/metrics"
	"github.com/radieske/keyshop-casino/internal/wagering"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Tabela de pagamentos: arquivo YAML opcional, senão a padrão
	table := wagering.DefaultPaytable()
	if cfg.PaytablePath != "" {
		t, err := wagering.LoadPaytable(cfg.PaytablePath)
		if err != nil {
			log.Fatal("paytable", zap.String("path", cfg.PaytablePath), zap.Error(err))
		}
		table = t
	}

	// Redis (guard de rodada)
	rdb, err := cache.ConnectRedis(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic round_settled)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettled)
	defer writer.Close()

	// deps
	casino := service.New(service.Deps{
		Log:     log,
		Table:   table,
		Ledgers: wallet.New(cfg.WalletURL), // wallet-service
		Guard:   guard.NewRoundGuard(rdb, cfg.RoundGuardTTL),
		Pub:     kpub.NewKafkaPublisher(writer, cfg.TopicRoundSettled),
		Metrics: service.NewMetrics(prometheus.DefaultRegisterer),
	})

	// HTTP público
	api := &chttp.API{Log: log, Casino: casino}
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(log, cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	log.Info("casino-service listening",
		zap.String("addr", apiSrv.Addr),
		zap.Int("symbols", len(table.Symbols)),
		zap.Int64("maxStake", table.Limits.MaxStake),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
