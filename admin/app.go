package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/metrics"
	"github.com/kea-dealership/event-core/common/publish"
)

// App wires Admin's MySQL store, broker bus and publisher registry,
// and the metrics HTTP server (SPEC_FULL.md §4.10), following the
// teacher's orders/app.go Start/Shutdown split, with the gRPC server
// and Consul registration dropped (no synchronous RPC surface exists
// in this core, see DESIGN.md).
type App struct {
	cfg    Config
	logger *slog.Logger

	db  *sql.DB
	bus *broker.Bus

	service       *Service
	metricsServer *http.Server
	brokerMetrics *metrics.BrokerMetrics
}

type Config struct {
	ServiceName   string
	Broker        config.BrokerConfig
	MySQL         config.MySQLConfig
	Observability config.ObservabilityConfig
}

func NewApp(ctx context.Context, cfg Config, db *sql.DB, logger *slog.Logger) (*App, error) {
	bus, err := broker.Connect(ctx, cfg.Broker, logger)
	if err != nil {
		return nil, err
	}

	brokerMetrics := metrics.NewBrokerMetrics(cfg.ServiceName)

	registry, err := publish.NewRegistry(bus, "admin_exchange", logger, brokerMetrics)
	if err != nil {
		bus.Close()
		return nil, err
	}

	store := NewStore(db)
	svc := NewService(store, registry, logger)

	return &App{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		bus:           bus,
		service:       svc,
		brokerMetrics: brokerMetrics,
	}, nil
}

// Start runs the metrics HTTP server until ctx is cancelled. Admin
// has no consumer of its own — it is a pure publisher, so there is no
// consume loop to run here (spec.md §4.4's consumer lifecycle applies
// to Auth/Employee/Synch, not to Admin).
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

	<-ctx.Done()
	return nil
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
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing mysql", slog.Any("error", err))
	}
	return nil
}

// Service exposes the wired business layer for the process entrypoint
// if a caller needs it (tests, future HTTP handlers external to this
// core).
func (a *App) Service() *Service {
	return a.service
}
