package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/cache"
	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/consumer"
	"github.com/kea-dealership/event-core/common/metrics"
	"github.com/kea-dealership/event-core/common/reconcile"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	sourceExchange = "employee_exchange"
	queueName      = "synch_microservice_queue"
)

// App wires Synch's Mongo replicas, Redis-backed brand/color lookups
// (C12), broker consumer loop and metrics server. Synch has no
// publisher of its own — it is a pure replica of Employee's catalog
// (spec.md §1).
type App struct {
	cfg    Config
	logger *slog.Logger

	mongoDisconnect func(context.Context) error
	redisClient     *redis.Client
	bus             *broker.Bus

	dispatcher    Dispatcher
	metricsServer *http.Server
	brokerMetrics *metrics.BrokerMetrics
}

type Config struct {
	ServiceName   string
	Broker        config.BrokerConfig
	Mongo         config.MongoConfig
	Redis         config.RedisConfig
	Observability config.ObservabilityConfig
}

func NewApp(ctx context.Context, cfg Config, db *mongo.Database, mongoDisconnect func(context.Context) error, redisClient *redis.Client, logger *slog.Logger) (*App, error) {
	bus, err := broker.Connect(ctx, cfg.Broker, logger)
	if err != nil {
		return nil, err
	}

	brokerMetrics := metrics.NewBrokerMetrics(cfg.ServiceName)

	insurances := NewInsuranceStore(db)
	models := NewModelStore(db)
	brands := NewBrandStore(db)
	colors := NewColorStore(db)

	brandColorCache := cache.NewBrandColorCache(redisClient, cfg.Redis.TTL, logger)
	brandLookup := cache.NewBrandLookup(brandColorCache, brands)
	colorLookup := cache.NewColorLookup(brandColorCache, colors)

	dispatcher := Dispatcher{
		Insurance: reconcile.InsuranceReconciler{Store: insurances},
		Model:     reconcile.ModelReconciler{Store: models, Brands: brandLookup, Colors: colorLookup},
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		mongoDisconnect: mongoDisconnect,
		redisClient:     redisClient,
		bus:             bus,
		dispatcher:      dispatcher,
		brokerMetrics:   brokerMetrics,
	}, nil
}

// Start runs the metrics server and the insurance/model consumer loop
// until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{Addr: a.cfg.Observability.MetricsAddr, Handler: mux}

	go func() {
		a.logger.Info("starting metrics server", slog.String("addr", a.cfg.Observability.MetricsAddr))
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	return consumer.Run(ctx, a.bus, sourceExchange, queueName, a.logger, a.brokerMetrics, a.dispatcher.Handle)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down gracefully")

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Error("error shutting down metrics server", slog.Any("error", err))
		}
	}
	if err := a.bus.Close(); err != nil {
		a.logger.Error("error closing broker", slog.Any("error", err))
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("error closing redis", slog.Any("error", err))
	}
	if err := a.mongoDisconnect(ctx); err != nil {
		a.logger.Error("error closing mongo", slog.Any("error", err))
	}
	return nil
}
