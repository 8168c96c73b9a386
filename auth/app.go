package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/consumer"
	"github.com/kea-dealership/event-core/common/metrics"
	"github.com/kea-dealership/event-core/common/reconcile"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	sourceExchange = "admin_exchange"
	queueName      = "auth_microservice_queue"
)

// App wires Auth's MongoDB employee replica, broker consumer loop and
// metrics server, following the same Start/Shutdown split as
// admin/app.go. Unlike Admin, Auth has no publisher of its own — it
// only reconciles what Admin already published (spec.md §4.4).
type App struct {
	cfg    Config
	logger *slog.Logger

	disconnect func(context.Context) error
	bus        *broker.Bus

	dispatcher    Dispatcher
	metricsServer *http.Server
	brokerMetrics *metrics.BrokerMetrics
}

type Config struct {
	ServiceName   string
	Broker        config.BrokerConfig
	Mongo         config.MongoConfig
	Observability config.ObservabilityConfig
}

func NewApp(ctx context.Context, cfg Config, db *mongo.Database, disconnect func(context.Context) error, logger *slog.Logger) (*App, error) {
	bus, err := broker.Connect(ctx, cfg.Broker, logger)
	if err != nil {
		return nil, err
	}

	brokerMetrics := metrics.NewBrokerMetrics(cfg.ServiceName)

	store := NewStore(db)
	dispatcher := Dispatcher{
		// Auth is a replica, not the catalog's authoritative writer, so
		// an update never needs to preserve a tombstone the way
		// Employee service's replica must (see
		// common/reconcile/employee_test.go).
		Reconciler: reconcile.EmployeeReconciler{Store: store, PreserveDeletedOnUpdate: false},
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		disconnect:    disconnect,
		bus:           bus,
		dispatcher:    dispatcher,
		brokerMetrics: brokerMetrics,
	}, nil
}

// Start runs the metrics HTTP server and the employee-replica consumer
// loop until ctx is cancelled.
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
	if err := a.disconnect(ctx); err != nil {
		a.logger.Error("error closing mongo", slog.Any("error", err))
	}
	return nil
}
