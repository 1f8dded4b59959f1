package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/gateway"
	"github.com/radieske/keyshop-casino/internal/shared/config"
	"github.com/radieske/keyshop-casino/internal/shared/logger"
	"github.com/radieske/keyshop-casino/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	h, err := gateway.New(log,
		gateway.Route{Prefix: "/api/wallet", Target: cfg.WalletURL},   // wallet-service
		gateway.Route{Prefix: "/api/casino", Target: cfg.CasinoURL},   // casino-service
		gateway.Route{Prefix: "/api/history", Target: cfg.HistoryURL}, // history-service (REST + /ws)
	)
	if err != nil {
		log.Fatal("gateway routes", zap.Error(err))
	}

	metrics.StartMetricsServer(log, cfg.MetricsPort, nil)

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening",
		zap.String("addr", addr),
		zap.String("wallet", cfg.WalletURL),
		zap.String("casino", cfg.CasinoURL),
		zap.String("history", cfg.HistoryURL),
	)
	if err := http.ListenAndServe(addr, h); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
