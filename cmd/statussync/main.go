package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/adapters/postgres"
	"github.com/storebridge/braintree-checkout/internal/config"
	"github.com/storebridge/braintree-checkout/internal/jobs/statussync"
	"github.com/storebridge/braintree-checkout/internal/locale"
	"github.com/storebridge/braintree-checkout/pkg/observability"
)

func main() {
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting payment status sync")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	healthChecker := observability.NewHealthChecker(pool, nil)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker)
	defer func() {
		if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
			logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}()

	transportCfg := braintree.DefaultTransportConfig(cfg.Gateway.Environment)
	transportCfg.MerchantID = cfg.Gateway.MerchantID
	transportCfg.PublicKey = cfg.Gateway.PublicKey
	transportCfg.PrivateKey = cfg.Gateway.PrivateKey
	if cfg.Gateway.BaseURL != "" {
		transportCfg.BaseURL = cfg.Gateway.BaseURL
	}
	if cfg.Gateway.Timeout > 0 {
		transportCfg.Timeout = time.Duration(cfg.Gateway.Timeout) * time.Second
	}
	transport, err := braintree.NewHTTPTransport(transportCfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize gateway transport", zap.Error(err))
	}

	builder := braintree.NewBuilder(braintree.BuilderConfig{
		MerchantAccounts: cfg.Gateway.MerchantAccountMap(),
		Channel:          cfg.Gateway.Channel,
	})
	client := braintree.NewClient(transport, builder, locale.NewBundle(nil), logger)
	if cfg.Gateway.TokenizationKey != "" {
		client.UseTokenizationKey(cfg.Gateway.TokenizationKey)
	}
	repository := postgres.NewOrderRepository(pool)

	job := statussync.NewJob(client, repository, logger)
	updated, err := job.Run(ctx)
	if err != nil {
		logger.Error("Status sync failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Status sync finished", zap.Int("orders_updated", updated))
}

func initLogger() *zap.Logger {
	env := os.Getenv("ENVIRONMENT")

	if env == "production" {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		logger, _ := zapCfg.Build()
		return logger
	}

	logger, _ := zap.NewDevelopment()
	return logger
}
