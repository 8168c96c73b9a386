package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/logger"
	"github.com/kea-dealership/event-core/common/store"
	"github.com/kea-dealership/event-core/common/tracing"
)

func main() {
	serviceName := config.GetEnv("SERVICE_NAME", "admin")
	log := logger.NewLogger(serviceName)

	cfg := Config{
		ServiceName:   serviceName,
		Broker:        config.LoadBrokerConfig(),
		MySQL:         config.LoadMySQLConfig(),
		Observability: config.LoadObservabilityConfig(),
	}

	shutdownTracer, err := tracing.InitTracer(serviceName, log, cfg.Observability.OTLPAddr)
	if err != nil {
		log.Error("failed to initialize tracer", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTracer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Admin performs ordinary authoritative CRUD, so it connects with
	// the application-role credentials; the root-role pair is reserved
	// for reconcilers writing replicated state (spec.md §6.2, see
	// employee/main.go).
	db, err := store.OpenMySQL(ctx, cfg.MySQL, false)
	if err != nil {
		log.Error("failed to connect to mysql", slog.Any("error", err))
		os.Exit(1)
	}

	app, err := NewApp(ctx, cfg, db, log)
	if err != nil {
		log.Error("failed to create app", slog.Any("error", err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		if err := app.Shutdown(context.Background()); err != nil {
			log.Error("error during shutdown", slog.Any("error", err))
		}
		cancel()
	}()

	if err := app.Start(ctx); err != nil {
		log.Error("failed to start app", slog.Any("error", err))
		os.Exit(1)
	}
}
