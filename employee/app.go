package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/consumer"
	"github.com/kea-dealership/event-core/common/metrics"
	"github.com/kea-dealership/event-core/common/publish"
	"github.com/kea-dealership/event-core/common/reconcile"
)

const (
	publishExchange = "employee_exchange"
	sourceExchange  = "admin_exchange"
	queueName       = "employee_microservice_queue"
)

// App wires Employee's two MySQL connections (application-role for
// its own authoritative catalog, root-role for the employee replica it
// mirrors from Admin), its publisher registry and consumer loop, and
// the metrics server. Employee is the only service that is both a
// publisher and a consumer (spec.md §1).
type App struct {
	cfg    Config
	logger *slog.Logger

	appDB  *sql.DB
	rootDB *sql.DB
	bus    *broker.Bus

	service       *Service
	dispatcher    Dispatcher
	metricsServer *http.Server
	brokerMetrics *metrics.BrokerMetrics
}

type Config struct {
	ServiceName   string
	Broker        config.BrokerConfig
	MySQL         config.MySQLConfig
	Observability config.ObservabilityConfig
}

func NewApp(ctx context.Context, cfg Config, appDB, rootDB *sql.DB, logger *slog.Logger) (*App, error) {
	bus, err := broker.Connect(ctx, cfg.Broker, logger)
	if err != nil {
		return nil, err
	}

	brokerMetrics := metrics.NewBrokerMetrics(cfg.ServiceName)

	registry, err := publish.NewRegistry(bus, publishExchange, logger, brokerMetrics)
	if err != nil {
		bus.Close()
		return nil, err
	}

	insurances := NewInsuranceStore(appDB)
	models := NewModelStore(appDB)
	brands := NewBrandStore(appDB)
	colors := NewColorStore(appDB)
	svc := NewService(insurances, models, brands, colors, registry, logger)

	employeeStore := NewEmployeeStore(rootDB)
	dispatcher := Dispatcher{
		Reconciler: reconcile.EmployeeReconciler{Store: employeeStore, PreserveDeletedOnUpdate: true},
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		appDB:         appDB,
		rootDB:        rootDB,
		bus:           bus,
		service:       svc,
		dispatcher:    dispatcher,
		brokerMetrics: brokerMetrics,
	}, nil
}

// Start runs the metrics server and the employee-replica consumer
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
	if err := a.appDB.Close(); err != nil {
		a.logger.Error("error closing mysql (application role)", slog.Any("error", err))
	}
	if err := a.rootDB.Close(); err != nil {
		a.logger.Error("error closing mysql (root role)", slog.Any("error", err))
	}
	return nil
}

// Service exposes the wired catalog business layer.
func (a *App) Service() *Service {
	return a.service
}
